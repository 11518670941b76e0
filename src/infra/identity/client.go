// Package identity adapts a GoTrue-compatible identity provider (the auth
// API behind hosted Supabase projects) to the core ports: a REST client for
// user lookup and token refresh, the chunked session cookie codec, and an
// access token inspector.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

// Config holds the provider's public endpoint and key.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration

	// HTTPClient overrides the default client. Tests inject one.
	HTTPClient *http.Client
}

// Client calls the provider's /auth/v1 REST API.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     *slog.Logger
	now     func() time.Time
}

var _ ports.IdentityProvider = (*Client)(nil)

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid identity url %q", cfg.URL)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("identity anon key is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/") + "/auth/v1",
		anonKey: cfg.AnonKey,
		http:    hc,
		log:     log,
		now:     time.Now,
	}, nil
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (p *userPayload) toDomain() *domain.SessionUser {
	if p == nil || p.ID == "" {
		return nil
	}
	return &domain.SessionUser{ID: p.ID, Email: p.Email, Role: p.Role}
}

type tokenPayload struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *userPayload `json:"user"`
}

type errorPayload struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (p errorPayload) text() string {
	for _, s := range []string{p.ErrorDescription, p.Msg, p.Message, p.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// GetUser returns the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.SessionUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var out userPayload
	if err := c.do(req, &out, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound); err != nil {
		return nil, err
	}
	user := out.toDomain()
	if user == nil {
		return nil, domain.NewUnavailableError("identity provider returned a user without id")
	}
	return user, nil
}

// RefreshSession exchanges refreshToken for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("encode refresh request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type=refresh_token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	var out tokenPayload
	if err := c.do(req, &out, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, domain.NewUnavailableError("identity provider returned a session without access token")
	}

	expiresAt := out.ExpiresAt
	if expiresAt == 0 && out.ExpiresIn > 0 {
		expiresAt = c.now().Add(time.Duration(out.ExpiresIn) * time.Second).Unix()
	}

	return &domain.AuthSession{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
		ExpiresAt:    expiresAt,
		User:         out.User.toDomain(),
	}, nil
}

// Health checks the provider's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx body into out. Statuses listed in
// rejected map to domain.ErrUnauthorized; every other failure maps to
// domain.ErrUnavailable.
func (c *Client) do(req *http.Request, out any, rejected ...int) error {
	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.DomainError{
			Base:    domain.ErrUnavailable,
			Message: fmt.Sprintf("%s %s: %v", req.Method, req.URL.Path, err),
		}
	}
	defer resp.Body.Close()

	c.log.DebugContext(req.Context(), "identity call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewUnavailableError(fmt.Sprintf("decode %s response: %v", req.URL.Path, err))
		}
		return nil
	}

	var ep errorPayload
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&ep)
	msg := ep.text()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	for _, code := range rejected {
		if resp.StatusCode == code {
			return domain.NewUnauthorizedError(msg)
		}
	}
	return domain.NewUnavailableError(fmt.Sprintf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, msg))
}
