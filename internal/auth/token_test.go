package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenInspector_ExpiresAt(t *testing.T) {
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:            "a@b.c",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}).SignedString([]byte("unknown-to-the-portal"))
	require.NoError(t, err)

	ti := NewTokenInspector()
	got, ok := ti.ExpiresAt(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	claims, err := ti.Inspect(signed)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestTokenInspector_OpaqueToken(t *testing.T) {
	_, ok := NewTokenInspector().ExpiresAt("opaque-session-token")
	assert.False(t, ok)
}
