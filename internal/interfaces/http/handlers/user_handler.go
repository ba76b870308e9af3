package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/interfaces/http/response"
)

type UserService interface {
	CreateUser(ctx context.Context, actor entities.Actor, input *entities.CreateUserInput) (*entities.User, error)
	ListUsers(ctx context.Context, actor entities.Actor, search string, role *entities.UserRole) ([]*entities.User, error)
	GetUser(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.User, error)
	UpdateUser(ctx context.Context, actor entities.Actor, id uuid.UUID, input *entities.UpdateUserInput) (*entities.User, error)
}

// UserHandler handles user administration endpoints
type UserHandler struct {
	userUsecase UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase UserService) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// CreateUser registers a staff member or collaborator
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input entities.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	user, err := h.userUsecase.CreateUser(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// ListUsers lists users, optionally filtered by role and a name or email search
// GET /api/v1/users?search=&role=
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var role *entities.UserRole
	if raw := c.Query("role"); raw != "" {
		r := entities.UserRole(raw)
		role = &r
	}

	users, err := h.userUsecase.ListUsers(c.Request.Context(), actor, c.Query("search"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// GetUser returns a single user
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userUsecase.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateUser edits profile fields and activation
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	var input entities.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	user, err := h.userUsecase.UpdateUser(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
