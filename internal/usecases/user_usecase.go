package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/crypto"
	"sportsadmin.backend/pkg/utils"
)

// UserUsecase manages accounts. Only admins and above may create or change users.
type UserUsecase struct {
	userRepo repositories.UserRepository
}

func NewUserUsecase(userRepo repositories.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

// CreateUser creates an active account. Only a superadmin may create another superadmin.
func (u *UserUsecase) CreateUser(ctx context.Context, actor entities.Actor, input *entities.CreateUserInput) (*entities.User, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may create users")
	}
	if !input.Role.Valid() {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown role %q", input.Role))
	}
	if input.Role == entities.UserRoleSuperAdmin && actor.Role != entities.UserRoleSuperAdmin {
		return nil, domainerrors.Unauthorized("only a superadmin may create another superadmin")
	}
	return u.create(ctx, input)
}

// EnsureSuperAdmin creates the first superadmin. It returns false when the email is already taken.
func (u *UserUsecase) EnsureSuperAdmin(ctx context.Context, email, name, password string) (*entities.User, bool, error) {
	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	user, err := u.create(ctx, &entities.CreateUserInput{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     entities.UserRoleSuperAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (u *UserUsecase) create(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domainerrors.Validation("a valid email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domainerrors.Validation("name is required")
	}
	if err := crypto.ValidatePassword(input.Password); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:             utils.GenerateUUIDv7(),
		Email:          email,
		Name:           strings.TrimSpace(input.Name),
		PasswordHash:   hash,
		Role:           input.Role,
		Identification: input.Identification,
		Phone:          input.Phone,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.NewAppError(http.StatusConflict, "email already registered", domainerrors.ErrAlreadyExists)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers filters by a case-insensitive name/email search and an optional role.
func (u *UserUsecase) ListUsers(ctx context.Context, actor entities.Actor, search string, role *entities.UserRole) ([]*entities.User, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may list users")
	}
	if role != nil && !role.Valid() {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown role %q", *role))
	}
	return u.userRepo.List(ctx, strings.TrimSpace(search), role)
}

// GetUser returns a user to an admin or to the user themselves.
func (u *UserUsecase) GetUser(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.User, error) {
	if actor.ID != id && !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may view other users")
	}
	return u.userRepo.GetByID(ctx, id)
}

// UpdateUser changes profile fields and the active flag. Admins cannot deactivate themselves.
func (u *UserUsecase) UpdateUser(ctx context.Context, actor entities.Actor, id uuid.UUID, input *entities.UpdateUserInput) (*entities.User, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may update users")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role.Rank() > actor.Role.Rank() {
		return nil, domainerrors.Unauthorized("cannot modify a user with a higher role")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.Validation("name cannot be empty")
		}
		user.Name = name
	}
	if input.Identification != nil {
		user.Identification = *input.Identification
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.IsActive != nil {
		if !*input.IsActive && user.ID == actor.ID {
			return nil, domainerrors.Validation("you cannot deactivate your own account")
		}
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
