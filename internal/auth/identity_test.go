package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestResolveValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-123", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	id := NewResolver(testSecret, false).Resolve(req)
	require.NotNil(t, id)
	assert.Equal(t, "user-123", id.ID)
	assert.Equal(t, "user@example.com", id.Email)
}

func TestResolveInvalidTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Nil(t, NewResolver(testSecret, false).Resolve(req))
}

func TestResolveWrongSecretIsAnonymous(t *testing.T) {
	token, err := GenerateToken("some-other-secret", "user-123", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Nil(t, NewResolver(testSecret, false).Resolve(req))
}

func TestResolveExpiredTokenIsAnonymous(t *testing.T) {
	claims := Claims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Nil(t, NewResolver(testSecret, false).Resolve(req))
}

func TestResolveNoCredentials(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, NewResolver(testSecret, false).Resolve(req))
}

func TestDevHeaderOnlyWhenEnabled(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-Id", "dev-user")

	assert.Nil(t, NewResolver(testSecret, false).Resolve(req))

	id := NewResolver(testSecret, true).Resolve(req)
	require.NotNil(t, id)
	assert.Equal(t, "dev-user", id.ID)
	assert.Empty(t, id.Email)
}

func TestDevHeaderIgnoredWhenTokenPresent(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.Header.Set("X-User-Id", "dev-user")

	// a present-but-invalid token must not fall through to the header
	assert.Nil(t, NewResolver(testSecret, true).Resolve(req))
}
