package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenType separates access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	issuer    = "sportsadmin"
	clockSkew = 5 * time.Second
)

// Claims carries the authenticated staff member.
type Claims struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int64 `json:"expiresIn"`
}

// JWTService issues and verifies HS256 tokens for one signing secret.
type JWTService struct {
	secret []byte
	ttl    map[TokenType]time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

var sign = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl: map[TokenType]time.Duration{
			TokenTypeAccess:  accessExpiry,
			TokenTypeRefresh: refreshExpiry,
		},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		now: time.Now,
	}
}

// GenerateTokenPair issues an access and a refresh token sharing the same subject.
func (s *JWTService) GenerateTokenPair(userID uuid.UUID, email, role string) (*TokenPair, error) {
	pair := &TokenPair{ExpiresIn: int64(s.ttl[TokenTypeAccess] / time.Second)}
	for typ, dst := range map[TokenType]*string{
		TokenTypeAccess:  &pair.AccessToken,
		TokenTypeRefresh: &pair.RefreshToken,
	} {
		signed, err := s.issue(userID, email, role, typ)
		if err != nil {
			return nil, fmt.Errorf("issue %s token: %w", typ, err)
		}
		*dst = signed
	}
	return pair, nil
}

// ValidateToken accepts access tokens only.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken accepts refresh tokens only.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeRefresh)
}

func (s *JWTService) issue(userID uuid.UUID, email, role string, typ TokenType) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl[typ])),
		},
	}
	return sign(jwt.NewWithClaims(jwt.SigningMethodHS256, claims), s.secret)
}

func (s *JWTService) parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != want || claims.UserID == uuid.Nil:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
