package domain

import (
	"net/http"
	"time"
)

// SessionUser is the identity the provider reports for a valid session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthSession is the provider session stored in the browser's cookies.
type AuthSession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int64        `json:"expires_in,omitempty"`
	ExpiresAt    int64        `json:"expires_at,omitempty"`
	User         *SessionUser `json:"user,omitempty"`
}

// Expiry returns the access token expiry recorded in the session, or the
// zero time when unknown.
func (s *AuthSession) Expiry() time.Time {
	if s.ExpiresAt <= 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}

// RefreshOutcome classifies the result of a session refresh.
type RefreshOutcome int

const (
	// OutcomeRefreshed means the session is valid, possibly after renewal.
	OutcomeRefreshed RefreshOutcome = iota + 1
	// OutcomeNoSession means the request carries no usable session.
	OutcomeNoSession
	// OutcomeTransientFailure means the provider could not be reached or
	// failed on its side; retrying later may succeed.
	OutcomeTransientFailure
	// OutcomeTerminalFailure means the provider rejected the session.
	OutcomeTerminalFailure
)

func (o RefreshOutcome) String() string {
	switch o {
	case OutcomeRefreshed:
		return "refreshed"
	case OutcomeNoSession:
		return "no_session"
	case OutcomeTransientFailure:
		return "transient_failure"
	case OutcomeTerminalFailure:
		return "terminal_failure"
	default:
		return "unknown"
	}
}

// Failed reports whether o is one of the failure outcomes.
func (o RefreshOutcome) Failed() bool {
	return o == OutcomeTransientFailure || o == OutcomeTerminalFailure
}

// RefreshResult is what a session refresh produced. Cookies must be written
// to the response (and mirrored onto the forwarded request) regardless of
// the outcome; failure outcomes may still carry cookie-clearing writes.
type RefreshResult struct {
	Outcome RefreshOutcome
	User    *SessionUser
	Cookies []*http.Cookie
	Err     error
}

// FailurePolicy decides what the edge filter does with a failed refresh.
type FailurePolicy string

const (
	// FailOpen forwards the request without an authenticated user.
	FailOpen FailurePolicy = "open"
	// FailClosed rejects the request at the edge.
	FailClosed FailurePolicy = "closed"
)

// ParseFailurePolicy accepts "open" or "closed".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case FailOpen, FailClosed:
		return FailurePolicy(s), nil
	}
	return "", NewValidationError("failure_policy", "must be open or closed")
}
