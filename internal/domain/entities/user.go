package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleSuperAdmin   UserRole = "superadmin"
	UserRoleAdmin        UserRole = "admin"
	UserRoleLegalRep     UserRole = "legal_rep"
	UserRoleAccountant   UserRole = "accountant"
	UserRoleCollaborator UserRole = "collaborator"
)

var roleRank = map[UserRole]int{
	UserRoleSuperAdmin:   5,
	UserRoleAdmin:        4,
	UserRoleLegalRep:     3,
	UserRoleAccountant:   2,
	UserRoleCollaborator: 1,
}

// Rank returns the position of the role in the hierarchy. Unknown roles rank 0.
func (r UserRole) Rank() int {
	return roleRank[r]
}

// Valid reports whether r is one of the five known roles.
func (r UserRole) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r is the same as or above min.
func (r UserRole) AtLeast(min UserRole) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// AllRoles lists the roles from highest to lowest rank.
func AllRoles() []UserRole {
	return []UserRole{
		UserRoleSuperAdmin,
		UserRoleAdmin,
		UserRoleLegalRep,
		UserRoleAccountant,
		UserRoleCollaborator,
	}
}

// User represents a user entity
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	Identification string    `json:"identification,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasRole is the authorization primitive used by every workflow gate.
func HasRole(user *User, required UserRole) bool {
	if user == nil {
		return false
	}
	return user.Role.AtLeast(required)
}

// Actor identifies who is performing a workflow action.
type Actor struct {
	ID   uuid.UUID
	Role UserRole
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// HasRole reports whether the actor's role is at least required.
func (a Actor) HasRole(required UserRole) bool {
	return a.Role.AtLeast(required)
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email          string   `json:"email" binding:"required,email"`
	Name           string   `json:"name" binding:"required,min=2,max=100"`
	Password       string   `json:"password" binding:"required,min=8"`
	Role           UserRole `json:"role" binding:"required"`
	Identification string   `json:"identification"`
	Phone          string   `json:"phone"`
}

// UpdateUserInput carries the profile fields an admin may change.
// Nil fields are left as they are; the role cannot be changed.
type UpdateUserInput struct {
	Name           *string `json:"name" binding:"omitempty,min=2,max=100"`
	Identification *string `json:"identification"`
	Phone          *string `json:"phone"`
	IsActive       *bool   `json:"isActive"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         *User  `json:"user"`
}
