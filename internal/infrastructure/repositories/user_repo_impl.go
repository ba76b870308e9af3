package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:             user.ID,
		Email:          strings.ToLower(user.Email),
		Name:           user.Name,
		PasswordHash:   user.PasswordHash,
		Role:           string(user.Role),
		Identification: user.Identification,
		Phone:          user.Phone,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("email = ?", strings.ToLower(email)).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

// Update updates the mutable profile fields. Role is not reassigned here.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"name":           user.Name,
		"identification": user.Identification,
		"phone":          user.Phone,
		"is_active":      user.IsActive,
		"updated_at":     time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists users with optional search and role filters
func (r *UserRepository) List(ctx context.Context, search string, role *entities.UserRole) ([]*entities.User, error) {
	var userModels []models.User
	query := GetDB(ctx, r.db).Order("created_at DESC")

	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}
	if role != nil {
		query = query.Where("role = ?", string(*role))
	}

	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.toEntity(&userModels[i]))
	}
	return users, nil
}

// ListIDsByRoles returns active users holding any of roles
func (r *UserRepository) ListIDsByRoles(ctx context.Context, roles []entities.UserRole) ([]uuid.UUID, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("role IN ? AND is_active = ?", names, true).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByRole counts active users with exactly role
func (r *UserRepository) CountByRole(ctx context.Context, role entities.UserRole) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("role = ? AND is_active = ?", string(role), true).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:             m.ID,
		Email:          m.Email,
		Name:           m.Name,
		PasswordHash:   m.PasswordHash,
		Role:           entities.UserRole(m.Role),
		Identification: m.Identification,
		Phone:          m.Phone,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
