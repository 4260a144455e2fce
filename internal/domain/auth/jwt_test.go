package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&JWTConfig{})
	assert.Error(t, err)

	_, err = NewJWTManager(nil)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	userID := uuid.New()
	token, expiresAt, err := m.GenerateAccessToken(Claims{
		UserID:       userID,
		Name:         "User",
		Email:        "user@example.com",
		IsSuperAdmin: true,
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsSuperAdmin)
}

func TestExpiredAccessTokenIsRejected(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Millisecond})
	require.NoError(t, err)
	token, _, err := m.GenerateAccessToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	raw, hash, expiresAt, err := m.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, hash, m.HashRefreshToken(raw))
	assert.True(t, expiresAt.After(time.Now()))

	raw2, hash2, _, err := m.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, hash, hash2)
}
