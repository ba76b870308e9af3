package usecases

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/utils"
)

// NotificationUsecase exposes the current user's in-app notifications
type NotificationUsecase struct {
	repo repositories.NotificationRepository
}

func NewNotificationUsecase(repo repositories.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{repo: repo}
}

func (u *NotificationUsecase) List(ctx context.Context, actor entities.Actor, unreadOnly bool, page utils.PageRequest) ([]*entities.Notification, utils.PageMeta, error) {
	items, total, err := u.repo.ListByUser(ctx, actor.ID, unreadOnly, page.Limit, page.Offset())
	if err != nil {
		return nil, utils.PageMeta{}, err
	}
	return items, page.Meta(total), nil
}

// MarkRead only touches notifications owned by the actor.
func (u *NotificationUsecase) MarkRead(ctx context.Context, actor entities.Actor, id uuid.UUID) error {
	return u.repo.MarkRead(ctx, id, actor.ID)
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, actor entities.Actor) (int64, error) {
	return u.repo.MarkAllRead(ctx, actor.ID)
}
