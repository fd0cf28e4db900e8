package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/groups", nil)
	r.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	r = httptest.NewRequest("GET", "/api/groups", nil)
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err, "missing header")

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err, "wrong scheme")
}

func TestExtractClaimsUnverified(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub":  "user-42",
		"role": "organizer",
	})

	claims, err := ExtractClaimsUnverified(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "organizer", claims.Role)
}

func TestExtractClaimsUnverifiedMissingSubject(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"role": "organizer"})

	_, err := ExtractClaimsUnverified(raw)
	assert.Error(t, err)
}

func TestExtractClaimsUnverifiedRoleOptional(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "user-42"})

	claims, err := ExtractClaimsUnverified(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Empty(t, claims.Role)
}

func TestExtractClaimsUnverifiedGarbage(t *testing.T) {
	_, err := ExtractClaimsUnverified("not-a-token")
	assert.Error(t, err)
	_, err = ExtractClaimsUnverified("")
	assert.Error(t, err)
}
