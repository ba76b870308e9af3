package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/pkg/jwt"
	"sportsadmin.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// TokenCookie carries the access token for browser clients
	TokenCookie = "token"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// AuthMiddleware validates the access token and stores the actor in the context.
// The token is read from the Authorization header, falling back to the token cookie.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			logger.Warn(c.Request.Context(), "Missing or malformed credentials", zap.String("path", c.Request.URL.Path))
			abortUnauthenticated(c, "Authorization header is required")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			logger.Warn(c.Request.Context(), "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abortUnauthenticated(c, "Token has expired")
				return
			}
			abortUnauthenticated(c, "Invalid token")
			return
		}

		role := entities.UserRole(claims.Role)
		if !role.Valid() {
			abortUnauthenticated(c, "Invalid token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, role)

		ctx := logger.WithActorID(c.Request.Context(), claims.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		return token, token != ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    response.CodeUnauthenticated,
		"message": message,
	})
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserRole gets the user role from context
func GetUserRole(c *gin.Context) (entities.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(entities.UserRole)
	return r, ok
}

// GetActor returns the authenticated actor
func GetActor(c *gin.Context) (entities.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return entities.Actor{}, false
	}
	role, ok := GetUserRole(c)
	if !ok {
		return entities.Actor{}, false
	}
	return entities.Actor{ID: id, Role: role}, true
}

// RequireMinRole aborts with 403 unless the actor's role is at least min.
func RequireMinRole(min entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRole(c)
		if !exists {
			abortUnauthenticated(c, "User role not found")
			return
		}

		if !role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    response.CodeForbidden,
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin creates a middleware that requires admin role or above
func RequireAdmin() gin.HandlerFunc {
	return RequireMinRole(entities.UserRoleAdmin)
}
