package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"returnsdesk/src/app/http/response"
	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

// CORS header names and the fixed preflight answer.
const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderMaxAge           = "Access-Control-Max-Age"

	preflightMethods = "GET, POST, PUT, DELETE, OPTIONS"
	preflightHeaders = "Content-Type, Authorization, X-Requested-With, X-Supabase-Authorization, apikey, Range"
	preflightMaxAge  = "86400"
)

// Context keys set by the edge filter.
const (
	SessionUserKey    = "session_user"
	SessionOutcomeKey = "session_outcome"
)

// EdgeFilterConfig is everything the edge filter needs; nothing is read
// from the environment at request time.
type EdgeFilterConfig struct {
	// Origins allowed to make credentialed cross-origin requests.
	Origins domain.OriginPolicy

	// Routes that bypass the filter.
	Routes RouteMatcher

	// Refresher renews the session of non-preflight requests. Nil skips refresh.
	Refresher ports.SessionRefresher

	// TransientPolicy applies when the provider could not be reached.
	TransientPolicy domain.FailurePolicy

	// TerminalPolicy applies when the provider rejected the session.
	TerminalPolicy domain.FailurePolicy

	Log *slog.Logger
}

// EdgeFilter applies the CORS policy, answers preflight requests and keeps
// the identity session fresh before the request reaches a route.
//
// Usage:
//
//	router.Use(middleware.EdgeFilter(cfg))
func EdgeFilter(cfg EdgeFilterConfig) gin.HandlerFunc {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		if cfg.Routes.Exempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		allowed := cfg.Origins.Allows(origin)

		if c.Request.Method == http.MethodOptions {
			if !allowed {
				// rejected preflights carry no headers at all
				for k := range c.Writer.Header() {
					c.Writer.Header().Del(k)
				}
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			h := c.Writer.Header()
			h.Set(HeaderAllowOrigin, origin)
			h.Set(HeaderAllowCredentials, "true")
			h.Set(HeaderAllowMethods, preflightMethods)
			h.Set(HeaderAllowHeaders, preflightHeaders)
			h.Set(HeaderMaxAge, preflightMaxAge)
			h.Set("Vary", "Origin")
			c.AbortWithStatus(http.StatusOK)
			return
		}

		if allowed {
			c.Header(HeaderAllowOrigin, origin)
			c.Header(HeaderAllowCredentials, "true")
			c.Header("Vary", "Origin")
		}

		if cfg.Refresher == nil {
			c.Next()
			return
		}

		result := cfg.Refresher.Refresh(c.Request.Context(), c.Request.Cookies())
		applyCookies(c, result.Cookies)
		c.Set(SessionOutcomeKey, result.Outcome)
		if result.User != nil {
			c.Set(SessionUserKey, result.User)
		}

		if result.Outcome.Failed() {
			policy := cfg.TransientPolicy
			if result.Outcome == domain.OutcomeTerminalFailure {
				policy = cfg.TerminalPolicy
			}
			requestID := GetRequestID(c)
			log.Warn("session refresh failed",
				"request_id", requestID,
				"outcome", result.Outcome.String(),
				"policy", string(policy),
				"path", c.Request.URL.Path,
				"error", result.Err,
			)
			if policy == domain.FailClosed {
				if result.Outcome == domain.OutcomeTerminalFailure {
					response.Unauthorized(c, "session is no longer valid", requestID)
				} else {
					response.Unavailable(c, "identity provider unavailable", requestID)
				}
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// GetSessionUser returns the user the edge filter authenticated, if any.
func GetSessionUser(c *gin.Context) (*domain.SessionUser, bool) {
	v, exists := c.Get(SessionUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.SessionUser)
	return user, ok && user != nil
}

// applyCookies writes cookies to the response and mirrors them onto the
// request so handlers further down see the renewed session.
func applyCookies(c *gin.Context, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	for _, ck := range cookies {
		http.SetCookie(c.Writer, ck)
	}

	updates := make(map[string]*http.Cookie, len(cookies))
	for _, ck := range cookies {
		updates[ck.Name] = ck
	}

	var pairs []string
	for _, ck := range c.Request.Cookies() {
		if up, ok := updates[ck.Name]; ok {
			if up.MaxAge >= 0 {
				pairs = append(pairs, up.Name+"="+up.Value)
			}
			delete(updates, ck.Name)
			continue
		}
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	for _, ck := range cookies {
		if _, pending := updates[ck.Name]; pending && ck.MaxAge >= 0 {
			pairs = append(pairs, ck.Name+"="+ck.Value)
		}
	}

	if len(pairs) == 0 {
		c.Request.Header.Del("Cookie")
		return
	}
	c.Request.Header.Set("Cookie", strings.Join(pairs, "; "))
}
