package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"returnsdesk/src/core/ports"
)

// JWTInspector reads the exp claim of provider access tokens. Signatures are
// not checked here; the provider validates tokens on every GetUser call.
type JWTInspector struct {
	parser *jwt.Parser
}

var _ ports.TokenInspector = (*JWTInspector)(nil)

func NewJWTInspector() *JWTInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

// Expiry implements ports.TokenInspector.
func (i *JWTInspector) Expiry(accessToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := i.parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
