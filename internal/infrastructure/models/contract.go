package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CollaboratorID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ContractType      string     `gorm:"type:varchar(20);not null"`
	Title             string     `gorm:"type:varchar(255);not null"`
	Description       string     `gorm:"type:text"`
	StartDate         time.Time  `gorm:"not null"`
	EndDate           *time.Time `gorm:"type:timestamp"`
	MonthlyPayment    *float64   `gorm:"type:decimal(14,2)"`
	PaymentPerSession *float64   `gorm:"type:decimal(14,2)"`
	Status            string     `gorm:"type:varchar(50);not null;index"`
	ContractFileID    *string    `gorm:"type:varchar(255)"`
	SignedFileID      *string    `gorm:"type:varchar(255)"`
	ApprovedBy        *uuid.UUID `gorm:"type:uuid"`
	Notes             string     `gorm:"type:text"`
	CreatedBy         uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

type Document struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ContractID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_documents_contract_type"`
	DocumentType string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_documents_contract_type"`
	FileID       string     `gorm:"type:varchar(255);not null"`
	FileName     string     `gorm:"type:varchar(255)"`
	ExpiryDate   *time.Time `gorm:"index"`
	Status       string     `gorm:"type:varchar(50);not null;index"`
	ReviewNotes  *string    `gorm:"type:text"`
	UploadedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
