package utils

import (
	"errors"
	"fmt"
	"time"

	"setlist-api/core/config"
	"setlist-api/core/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

type TokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    *string   `json:"email,omitempty"`
	Username *string   `json:"username,omitempty"`
	Scope    string    `json:"scope"`
	jwt.RegisteredClaims
}

func jwtSettings() (string, time.Duration) {
	cfg, ok := config.GetSafe()
	if !ok {
		return "", 0
	}
	return cfg.JWT.Secret, cfg.JWT.AccessTTL
}

// GenerateToken signs a token with the configured secret.
func GenerateToken(userID uuid.UUID, email *string, username *string, scope string) (string, error) {
	secret, ttl := jwtSettings()
	return GenerateTokenWithSecret(secret, ttl, userID, email, username, scope)
}

func GenerateTokenWithSecret(secret string, ttl time.Duration, userID uuid.UUID, email *string, username *string, scope string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := TokenClaims{
		UserID:   userID,
		Email:    email,
		Username: username,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ValidateAndParseToken(token string) (*TokenClaims, error) {
	secret, _ := jwtSettings()
	return ParseTokenWithSecret(secret, token)
}

func ParseTokenWithSecret(secret string, token string) (*TokenClaims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	if claims.Scope != constants.ScopeTokenAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
