package notifier

import (
	"context"

	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/logger"
	"sportsadmin.backend/pkg/utils"
)

// InAppNotifier turns workflow events into notification rows.
// Delivery failures are logged and never reach the caller.
type InAppNotifier struct {
	repo repositories.NotificationRepository
}

func NewInAppNotifier(repo repositories.NotificationRepository) *InAppNotifier {
	return &InAppNotifier{repo: repo}
}

// Notify stores one notification for the event's recipient.
func (n *InAppNotifier) Notify(ctx context.Context, event entities.NotificationEvent) {
	fields := []zap.Field{
		zap.String("event", string(event.Type)),
		zap.String("recipient_id", event.RecipientID.String()),
		zap.String("entity_type", string(event.EntityType)),
		zap.String("entity_id", event.EntityID.String()),
	}

	row := &entities.Notification{
		ID:         utils.GenerateUUIDv7(),
		UserID:     event.RecipientID,
		EventType:  event.Type,
		Title:      event.Title,
		Message:    event.Message,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
	}
	if err := n.repo.Create(ctx, row); err != nil {
		logger.Warn(ctx, "Failed to deliver notification", append(fields, zap.Error(err))...)
		return
	}
	logger.Info(ctx, "Notification delivered", fields...)
}
