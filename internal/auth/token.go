package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend token payload the portal reads.
// The signature is never checked here; the backend remains the authority.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenInspector reads unverified claims from bearer tokens issued by the backend.
type TokenInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector builds an inspector.
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// Inspect decodes the token claims without verifying the signature.
func (ti *TokenInspector) Inspect(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := ti.parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresAt returns the exp claim. Opaque tokens and tokens without exp report ok=false.
func (ti *TokenInspector) ExpiresAt(tokenStr string) (time.Time, bool) {
	claims, err := ti.Inspect(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
