package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
	"returnsdesk/src/infra/config"
	"returnsdesk/src/infra/logger"
)

type staticRefresher struct {
	result domain.RefreshResult
}

func (s staticRefresher) Refresh(context.Context, []*http.Cookie) domain.RefreshResult {
	return s.result
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) Refresh(context.Context, []*http.Cookie) domain.RefreshResult {
	r.calls++
	return domain.RefreshResult{Outcome: domain.OutcomeNoSession}
}

type stubDependency struct{ err error }

func (s stubDependency) Health(context.Context) error { return s.err }

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "development"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Log:    config.LogConfig{Level: "info", Format: "plain"},
		Edge: config.EdgeConfig{
			TransientPolicy: "open",
			TerminalPolicy:  "open",
		},
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, deps Dependencies) *gin.Engine {
	t.Helper()
	srv, err := New(cfg, logger.Discard(), deps)
	require.NoError(t, err)
	t.Cleanup(srv.cancel)
	return srv.Router()
}

func do(r http.Handler, method, path, origin, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServerSessionEndpoint(t *testing.T) {
	user := &domain.SessionUser{ID: "user-1", Email: "jane@example.com"}
	r := newTestServer(t, testConfig(), Dependencies{
		Refresher: staticRefresher{result: domain.RefreshResult{Outcome: domain.OutcomeRefreshed, User: user}},
	})

	w := do(r, http.MethodGet, "/v1/session", "http://localhost:3000", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"user-1"`)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServerSessionEndpointWithoutSession(t *testing.T) {
	r := newTestServer(t, testConfig(), Dependencies{
		Refresher: staticRefresher{result: domain.RefreshResult{Outcome: domain.OutcomeNoSession}},
	})

	w := do(r, http.MethodGet, "/v1/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServerPreflight(t *testing.T) {
	r := newTestServer(t, testConfig(), Dependencies{})

	w := do(r, http.MethodOptions, "/v1/returns/submit", "https://preview.replit.dev", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = do(r, http.MethodOptions, "/v1/returns/submit", "https://evil.example.com", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header())
}

func TestServerFailClosed(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.TransientPolicy = "closed"
	r := newTestServer(t, cfg, Dependencies{
		Refresher: staticRefresher{result: domain.RefreshResult{
			Outcome: domain.OutcomeTransientFailure,
			Err:     errors.New("connection refused"),
		}},
	})

	w := do(r, http.MethodGet, "/v1/returns/options", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "IDENTITY_UNAVAILABLE")
}

func TestServerSubmit(t *testing.T) {
	r := newTestServer(t, testConfig(), Dependencies{})

	w := do(r, http.MethodPost, "/v1/returns/submit", "", `{"customerName":"Jane Doe"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Information")
}

func TestServerDetailedHealth(t *testing.T) {
	r := newTestServer(t, testConfig(), Dependencies{
		Health: map[string]ports.ExternalService{
			"identity":      stubDependency{},
			"session_cache": stubDependency{err: errors.New("down")},
		},
	})

	w := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/health/detailed", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestServerNotFound(t *testing.T) {
	r := newTestServer(t, testConfig(), Dependencies{})

	w := do(r, http.MethodGet, "/v1/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestServerRejectsBadPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.TerminalPolicy = "sometimes"

	_, err := New(cfg, logger.Discard(), Dependencies{})
	assert.Error(t, err)
}

func TestServerRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2}
	refresher := &countingRefresher{}
	r := newTestServer(t, cfg, Dependencies{Refresher: refresher})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/returns/options", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{200, 200, 429, 429, 429}, codes)
	// throttled calls never reach the session refresh
	assert.Equal(t, 2, refresher.calls)

	// health is not throttled
	w := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 1}
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
	r := newTestServer(t, cfg, Dependencies{})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/returns/options", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestServerRejectsBadTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}

	_, err := New(cfg, logger.Discard(), Dependencies{})
	assert.Error(t, err)
}
