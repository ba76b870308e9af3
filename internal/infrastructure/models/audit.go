package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry rows are insert-only.
type AuditEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EntityType string    `gorm:"type:varchar(20);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     string    `gorm:"type:varchar(50);not null"`
	FromStatus string    `gorm:"type:varchar(50)"`
	ToStatus   string    `gorm:"type:varchar(50);not null"`
	Timestamp  time.Time `gorm:"column:occurred_at;not null;index"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType  string    `gorm:"type:varchar(50);not null"`
	Title      string    `gorm:"type:varchar(255);not null"`
	Message    string    `gorm:"type:text"`
	EntityType string    `gorm:"type:varchar(20)"`
	EntityID   uuid.UUID `gorm:"type:uuid"`
	Read       bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time
}
