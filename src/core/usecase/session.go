package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

// SessionConfig tunes session refresh.
type SessionConfig struct {
	// RefreshMargin renews the session when the access token expires sooner than this.
	RefreshMargin time.Duration

	// CacheTTL caps how long a validated access token is trusted without
	// asking the provider again.
	CacheTTL time.Duration
}

// SessionService keeps the provider session carried in cookies fresh.
// It implements ports.SessionRefresher for the edge filter.
type SessionService struct {
	provider ports.IdentityProvider
	cookies  ports.SessionCookieStore
	tokens   ports.TokenInspector
	cache    ports.SessionCache
	cfg      SessionConfig
	log      *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a SessionService. cache may be nil.
func NewSessionService(
	provider ports.IdentityProvider,
	cookies ports.SessionCookieStore,
	tokens ports.TokenInspector,
	cache ports.SessionCache,
	cfg SessionConfig,
	log *slog.Logger,
) *SessionService {
	return &SessionService{
		provider: provider,
		cookies:  cookies,
		tokens:   tokens,
		cache:    cache,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

var _ ports.SessionRefresher = (*SessionService)(nil)

// Refresh validates the session in cookies and renews it when it is close
// to expiry or the provider no longer accepts the access token.
func (s *SessionService) Refresh(ctx context.Context, cookies []*http.Cookie) domain.RefreshResult {
	session, err := s.cookies.Read(cookies)
	if err != nil {
		s.log.WarnContext(ctx, "discarding unreadable session cookie", "error", err)
		return domain.RefreshResult{
			Outcome: domain.OutcomeNoSession,
			Cookies: s.cookies.Clear(cookies),
			Err:     err,
		}
	}
	if session == nil {
		return domain.RefreshResult{Outcome: domain.OutcomeNoSession}
	}

	expiry := s.expiry(session)
	if session.AccessToken != "" && !s.needsRefresh(expiry) {
		user, err := s.validate(ctx, session.AccessToken, expiry)
		switch {
		case err == nil:
			return domain.RefreshResult{Outcome: domain.OutcomeRefreshed, User: user}
		case domain.IsUnauthorized(err):
			s.log.DebugContext(ctx, "access token rejected, refreshing session")
		default:
			return domain.RefreshResult{Outcome: domain.OutcomeTransientFailure, Err: err}
		}
	}

	if session.RefreshToken == "" {
		return domain.RefreshResult{
			Outcome: domain.OutcomeTerminalFailure,
			Cookies: s.cookies.Clear(cookies),
			Err:     domain.NewUnauthorizedError("session has no refresh token"),
		}
	}

	fresh, err := s.provider.RefreshSession(ctx, session.RefreshToken)
	if err != nil {
		if domain.IsUnauthorized(err) {
			return domain.RefreshResult{
				Outcome: domain.OutcomeTerminalFailure,
				Cookies: s.cookies.Clear(cookies),
				Err:     err,
			}
		}
		return domain.RefreshResult{Outcome: domain.OutcomeTransientFailure, Err: err}
	}

	written, err := s.cookies.Write(fresh, cookies)
	if err != nil {
		return domain.RefreshResult{Outcome: domain.OutcomeTransientFailure, Err: err}
	}

	user := fresh.User
	freshExpiry := s.expiry(fresh)
	if user == nil {
		if user, err = s.provider.GetUser(ctx, fresh.AccessToken); err != nil {
			s.log.WarnContext(ctx, "refreshed session without user", "error", err)
		}
	}
	if user != nil {
		s.remember(ctx, fresh.AccessToken, user, freshExpiry)
	}

	s.log.DebugContext(ctx, "session refreshed", "cookies", len(written))
	return domain.RefreshResult{
		Outcome: domain.OutcomeRefreshed,
		User:    user,
		Cookies: written,
	}
}

// validate resolves the user for accessToken, consulting the cache first.
func (s *SessionService) validate(ctx context.Context, accessToken string, expiry time.Time) (*domain.SessionUser, error) {
	if s.cache != nil {
		user, err := s.cache.Get(ctx, accessToken)
		if err != nil {
			s.log.WarnContext(ctx, "session cache lookup failed", "error", err)
		} else if user != nil {
			return user, nil
		}
	}

	user, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, accessToken, user, expiry)
	return user, nil
}

func (s *SessionService) remember(ctx context.Context, accessToken string, user *domain.SessionUser, expiry time.Time) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	ttl := s.cfg.CacheTTL
	if !expiry.IsZero() {
		if left := expiry.Sub(s.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.Put(ctx, accessToken, user, ttl); err != nil {
		s.log.WarnContext(ctx, "session cache store failed", "error", err)
	}
}

// expiry prefers the expiry recorded in the session and falls back to the
// token's exp claim. The zero time means unknown.
func (s *SessionService) expiry(session *domain.AuthSession) time.Time {
	if exp := session.Expiry(); !exp.IsZero() {
		return exp
	}
	if session.AccessToken == "" || s.tokens == nil {
		return time.Time{}
	}
	exp, err := s.tokens.Expiry(session.AccessToken)
	if err != nil {
		return time.Time{}
	}
	return exp
}

func (s *SessionService) needsRefresh(expiry time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	return expiry.Sub(s.now()) <= s.cfg.RefreshMargin
}
