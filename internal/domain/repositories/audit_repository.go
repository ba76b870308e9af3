package repositories

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
)

// AuditRepository is append-only
type AuditRepository interface {
	Append(ctx context.Context, entry *entities.AuditEntry) error
	ListByEntity(ctx context.Context, entityType entities.EntityType, entityID uuid.UUID) ([]*entities.AuditEntry, error)
}

// NotificationRepository stores in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entities.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
