package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/homeplate/config"
	"github.com/ray-remotestate/homeplate/middlewares"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pw"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	config.SecretKey = []byte("test-secret")

	userID := uuid.New()
	access, refresh, err := GenerateTokens(userID, "chef@example.com", []string{"chef"})
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	claims := &middlewares.Claims{}
	token, err := jwt.ParseWithClaims(access, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "chef@example.com", claims.Email)
	assert.Equal(t, []string{"chef"}, claims.Roles)

	refClaims := &jwt.RegisteredClaims{}
	refToken, err := jwt.ParseWithClaims(refresh, refClaims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	require.NoError(t, err)
	require.True(t, refToken.Valid)
	assert.Equal(t, userID.String(), refClaims.Subject)
}
