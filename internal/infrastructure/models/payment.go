package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ContractID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount          float64    `gorm:"type:decimal(14,2);not null"`
	PaymentDate     time.Time  `gorm:"not null"`
	Description     string     `gorm:"type:text"`
	BillFileID      *string    `gorm:"type:varchar(255)"`
	VoucherFileID   *string    `gorm:"type:varchar(255)"`
	Status          string     `gorm:"type:varchar(50);not null;index"`
	RejectionReason *string    `gorm:"type:text"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	ConfirmedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
