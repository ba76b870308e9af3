package repositories

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	List(ctx context.Context, search string, role *entities.UserRole) ([]*entities.User, error)
	ListIDsByRoles(ctx context.Context, roles []entities.UserRole) ([]uuid.UUID, error)
	CountByRole(ctx context.Context, role entities.UserRole) (int64, error)
}
