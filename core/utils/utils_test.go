package utils

import (
	"regexp"
	"testing"
	"time"

	"setlist-api/core/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvitationToken(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := map[string]bool{}

	for i := 0; i < 100; i++ {
		tok, err := GenerateInvitationToken()
		require.NoError(t, err)
		assert.Regexp(t, re, tok)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestGenerateJoinCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-F]{8}$`)
	for i := 0; i < 100; i++ {
		code, err := GenerateJoinCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	email := "ana@example.com"

	tok, err := GenerateTokenWithSecret("s3cret", time.Hour, userID, &email, nil, constants.ScopeTokenAccess)
	require.NoError(t, err)

	claims, err := ParseTokenWithSecret("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	require.NotNil(t, claims.Email)
	assert.Equal(t, email, *claims.Email)

	_, err = ParseTokenWithSecret("other", tok)
	assert.Error(t, err)
}

func TestParseTokenRejectsRefreshScope(t *testing.T) {
	tok, err := GenerateTokenWithSecret("s3cret", time.Hour, uuid.New(), nil, nil, constants.ScopeTokenRefresh)
	require.NoError(t, err)

	_, err = ParseTokenWithSecret("s3cret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	claims := TokenClaims{
		UserID: uuid.New(),
		Scope:  constants.ScopeTokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ParseTokenWithSecret("s3cret", tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateSlug(t *testing.T) {
	s := GenerateSlug("Summer Tour 2025")
	assert.Regexp(t, `^summer-tour-2025-[0-9a-f]{6}$`, s)
	assert.NotEqual(t, s, GenerateSlug("Summer Tour 2025"))
}
