// Package ports defines interfaces (ports) that connect the core to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This keeps the core free of transport and storage details.
package ports

import (
	"context"
	"net/http"
	"time"

	"returnsdesk/src/core/domain"
)

// IdentityProvider is the remote session authority.
//
// Implementations return errors wrapping domain.ErrUnauthorized when the
// provider rejects the presented token, and domain.ErrUnavailable when it
// cannot be reached or fails on its side.
type IdentityProvider interface {
	ExternalService

	// GetUser validates accessToken and returns its user.
	GetUser(ctx context.Context, accessToken string) (*domain.SessionUser, error)

	// RefreshSession exchanges refreshToken for a new session.
	RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthSession, error)
}

// SessionCookieStore encodes and decodes the provider session in cookies.
type SessionCookieStore interface {
	// Read returns the session carried by cookies, or nil when there is none.
	// A present but undecodable session yields an error.
	Read(cookies []*http.Cookie) (*domain.AuthSession, error)

	// Write returns the cookies that store session, including writes that
	// expire stale chunks found in existing.
	Write(session *domain.AuthSession, existing []*http.Cookie) ([]*http.Cookie, error)

	// Clear returns the cookies that remove every session cookie in existing.
	Clear(existing []*http.Cookie) []*http.Cookie
}

// SessionCache remembers users of recently validated access tokens.
// Get returns (nil, nil) on a miss.
type SessionCache interface {
	Get(ctx context.Context, accessToken string) (*domain.SessionUser, error)
	Put(ctx context.Context, accessToken string, user *domain.SessionUser, ttl time.Duration) error
}

// SessionRefresher refreshes the session carried by a request's cookies.
type SessionRefresher interface {
	Refresh(ctx context.Context, cookies []*http.Cookie) domain.RefreshResult
}

// TokenInspector reads claims from an access token without verifying it.
type TokenInspector interface {
	// Expiry returns the token's expiry, or the zero time when it has none.
	Expiry(accessToken string) (time.Time, error)
}
