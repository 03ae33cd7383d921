package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/config"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(&config.SecurityConfig{JWTSecret: "test-secret", JWTExpiration: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager(&config.SecurityConfig{})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, expires, err := m.GenerateToken("u-1", "alice", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin())
}

func TestValidateTokenExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	m.now = func() time.Time { return now }

	token, _, err := m.GenerateToken("u-1", "alice", RoleUser)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.GenerateToken("u-1", "alice", RoleUser)
	require.NoError(t, err)

	other, err := NewTokenManager(&config.SecurityConfig{JWTSecret: "other"})
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t)
	claims := &Claims{
		UserID: "u-1",
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestClaimsIsAdminNil(t *testing.T) {
	var c *Claims
	assert.False(t, c.IsAdmin())
	assert.False(t, (&Claims{Role: RoleUser}).IsAdmin())
}
