package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/infra/config"
	"returnsdesk/src/infra/logger"
)

const testAnonKey = "anon-key"

// fakeGoTrue serves the subset of the auth API the client calls.
func fakeGoTrue(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		switch r.Header.Get("Authorization") {
		case "Bearer good-access":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":    "user-1",
				"email": "jane@example.com",
				"role":  "authenticated",
			})
		case "Bearer broken-access":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
		}
	})

	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))

		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch body.RefreshToken {
		case "good-refresh":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "new-access",
				"refresh_token": "new-refresh",
				"token_type":    "bearer",
				"expires_in":    3600,
				"user":          map[string]string{"id": "user-1", "email": "jane@example.com"},
			})
		case "overloaded":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid Refresh Token: Already Used",
			})
		}
	})

	mux.HandleFunc("GET /auth/v1/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"GoTrue"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{URL: url, AnonKey: testAnonKey, Timeout: time.Second}, logger.Discard())
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{URL: "not a url", AnonKey: "k"}, logger.Discard())
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "https://demo.supabase.co"}, logger.Discard())
	assert.Error(t, err)

	c, err := NewClient(Config{URL: "https://demo.supabase.co/", AnonKey: "k"}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "https://demo.supabase.co/auth/v1", c.baseURL)
}

func TestClientGetUser(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)

	user, err := c.GetUser(context.Background(), "good-access")
	require.NoError(t, err)
	assert.Equal(t, &domain.SessionUser{ID: "user-1", Email: "jane@example.com", Role: "authenticated"}, user)
}

func TestClientGetUserRejected(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)

	_, err := c.GetUser(context.Background(), "expired-access")
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid JWT")
}

func TestClientGetUserUpstreamFailure(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)

	_, err := c.GetUser(context.Background(), "broken-access")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestClientRefreshSession(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	session, err := c.RefreshSession(context.Background(), "good-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", session.AccessToken)
	assert.Equal(t, "new-refresh", session.RefreshToken)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.Equal(t, now.Add(time.Hour).Unix(), session.ExpiresAt)
	require.NotNil(t, session.User)
	assert.Equal(t, "user-1", session.User.ID)
}

func TestClientRefreshSessionRejected(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)

	_, err := c.RefreshSession(context.Background(), "reused-refresh")
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Already Used")
}

func TestClientRefreshSessionUnavailable(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)

	_, err := c.RefreshSession(context.Background(), "overloaded")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestClientUnreachable(t *testing.T) {
	srv := fakeGoTrue(t)
	c := newTestClient(t, srv.URL)
	srv.Close()

	_, err := c.GetUser(context.Background(), "good-access")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	assert.Error(t, c.Health(context.Background()))
}

func TestClientHealth(t *testing.T) {
	c := newTestClient(t, fakeGoTrue(t).URL)
	assert.NoError(t, c.Health(context.Background()))
}

func TestClientLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "debug", Format: "plain"}, &buf)
	c, err := NewClient(Config{URL: fakeGoTrue(t).URL, AnonKey: testAnonKey, Timeout: time.Second}, log)
	require.NoError(t, err)

	ctx := logger.ContextWithRequestID(context.Background(), "req-9")
	_, err = c.GetUser(ctx, "good-access")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "DEBUG identity call")
	assert.Contains(t, buf.String(), "request_id=req-9")
}
