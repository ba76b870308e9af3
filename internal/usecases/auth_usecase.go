package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/crypto"
	"sportsadmin.backend/pkg/jwt"
	"sportsadmin.backend/pkg/logger"
)

// TokenIssuer mints and verifies session tokens.
type TokenIssuer interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*jwt.TokenPair, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
}

type AuthUsecase struct {
	users  repositories.UserRepository
	tokens TokenIssuer
}

func NewAuthUsecase(users repositories.UserRepository, tokens TokenIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens}
}

// decoyHash is compared against when the email is unknown so both
// failure paths pay the bcrypt cost.
var decoyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword("decoy-password-0")
	return h
})

// Login checks credentials and issues a token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := u.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		crypto.CheckPassword(input.Password, decoyHash())
		return nil, domainerrors.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		logger.Warn(ctx, "Login rejected", zap.String("user_id", user.ID.String()))
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domainerrors.ErrUserInactive
	}

	pair, err := u.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Login succeeded", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
	}, nil
}

// RefreshToken rotates a pair after re-reading the user, so deactivated
// or deleted accounts cannot keep refreshing.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthenticated("invalid refresh token")
	}

	user, err := u.users.GetByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return nil, domainerrors.Unauthenticated("invalid refresh token")
	case err != nil:
		return nil, err
	case !user.IsActive:
		return nil, domainerrors.ErrUserInactive
	}
	return u.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
}

func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.users.GetByID(ctx, id)
}
