package repositories

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
)

// ContractRepository defines contract data operations
type ContractRepository interface {
	Create(ctx context.Context, contract *entities.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Contract, error)
	List(ctx context.Context, filter entities.ContractFilter) ([]*entities.Contract, int64, error)
	// Transition persists contract only if its stored status is still from.
	Transition(ctx context.Context, contract *entities.Contract, from entities.ContractStatus) error
	// UpdateDetails persists the editable fields only if the stored status is still contract.Status.
	UpdateDetails(ctx context.Context, contract *entities.Contract) error
	Count(ctx context.Context, collaboratorID *uuid.UUID, statuses ...entities.ContractStatus) (int64, error)
}
