package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/interfaces/http/middleware"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/pkg/jwt"
	"sportsadmin.backend/pkg/logger"
)

const (
	accessCookieMaxAge  = 15 * 60
	refreshCookieMaxAge = 7 * 24 * 3600
	refreshCookie       = "refresh_token"
)

type AuthService interface {
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase  AuthService
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, secureCookie: secureCookie}
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, access, accessCookieMaxAge, "/", "", h.secureCookie, true)
	c.SetCookie(refreshCookie, refresh, refreshCookieMaxAge, "/", "", h.secureCookie, true)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		logger.Warn(c.Request.Context(), "Login failed", zap.String("email", input.Email), zap.Error(err))
		response.Error(c, err)
		return
	}

	h.setTokenCookies(c, authResponse.AccessToken, authResponse.RefreshToken)
	response.Success(c, http.StatusOK, authResponse)
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var refreshToken string

	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}

	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			refreshToken = cookie
		}
	}

	if refreshToken == "" {
		response.Error(c, domainerrors.Validation("Refresh token is required"))
		return
	}

	tokenPair, err := h.authUsecase.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setTokenCookies(c, tokenPair.AccessToken, tokenPair.RefreshToken)
	response.Success(c, http.StatusOK, tokenPair)
}

// GetMe returns current authenticated user details
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
