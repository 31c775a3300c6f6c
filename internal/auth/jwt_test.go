package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "tarelka", "tarelka", time.Hour, 24*time.Hour)
}

func TestJWT_GenerateAndValidate(t *testing.T) {
	a := testAuthenticator()

	access, refresh, err := a.GenerateTokens("manager", "staff")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "manager", claims["sub"])
	assert.Equal(t, "staff", claims["role"])
}

func TestJWT_AccessSecretDoesNotValidateRefresh(t *testing.T) {
	a := testAuthenticator()

	access, refresh, err := a.GenerateTokens("manager", "staff")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "tarelka", "tarelka", -time.Minute, -time.Minute)

	access, _, err := a.GenerateTokens("manager", "staff")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}
