package repositories

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
)

// PaymentRepository defines payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	List(ctx context.Context, filter entities.PaymentFilter) ([]*entities.Payment, int64, error)
	// Transition persists payment only if its stored status is still from.
	Transition(ctx context.Context, payment *entities.Payment, from entities.PaymentStatus) error
	Count(ctx context.Context, contractIDs []uuid.UUID, statuses ...entities.PaymentStatus) (int64, error)
}
