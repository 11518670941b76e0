// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
// Values from .env.local and .env are loaded first when those files exist.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"returnsdesk/src/core/domain"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=8080, APP_IDENTITY_URL=https://xyz.supabase.co
type Config struct {
	// App holds the runtime mode (flattened env vars)
	App AppConfig

	// Server configuration (flattened env vars)
	Server ServerConfig

	// Logging configuration (flattened env vars)
	Log LogConfig

	// Identity provider configuration
	Identity IdentityConfig

	// Edge filter configuration
	Edge EdgeConfig

	// Session cache configuration
	Cache CacheConfig

	// Rate limit configuration
	RateLimit RateLimitConfig
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	// Env selects the runtime mode: "production" or anything else is development (default: development)
	Env string `envconfig:"ENV" default:"development"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// StaticDir is served under /static when set
	StaticDir string `envconfig:"STATIC_DIR"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed (default: none)
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: plain)
	Format string `envconfig:"LOG_FORMAT" default:"plain"`
}

// IdentityConfig holds the identity provider's public endpoint and key.
type IdentityConfig struct {
	// URL is the public identity service URL (required)
	URL string `envconfig:"IDENTITY_URL" required:"true"`

	// AnonKey is the public anonymous API key (required)
	AnonKey string `envconfig:"IDENTITY_ANON_KEY" required:"true"`

	// Timeout bounds each call to the provider (default: 10s)
	Timeout time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"10s"`

	// CookieName overrides the session cookie name derived from URL
	CookieName string `envconfig:"IDENTITY_COOKIE_NAME"`

	// CookieSecure sets the Secure flag on session cookies (default: false)
	CookieSecure bool `envconfig:"IDENTITY_COOKIE_SECURE" default:"false"`

	// RefreshMargin renews sessions whose access token expires sooner (default: 60s)
	RefreshMargin time.Duration `envconfig:"IDENTITY_REFRESH_MARGIN" default:"60s"`
}

// EdgeConfig holds CORS and session failure settings for the edge filter.
type EdgeConfig struct {
	// AllowedOrigins are extra origin regular expressions added to the mode's policy
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// TransientPolicy is "open" or "closed" for unreachable-provider failures (default: open)
	TransientPolicy string `envconfig:"AUTH_TRANSIENT_POLICY" default:"open"`

	// TerminalPolicy is "open" or "closed" for rejected sessions (default: open)
	TerminalPolicy string `envconfig:"AUTH_TERMINAL_POLICY" default:"open"`
}

// CacheConfig holds the optional Redis session cache settings.
type CacheConfig struct {
	// RedisURL enables the cache when set (redis://... or host:port)
	RedisURL string `envconfig:"REDIS_URL"`

	// TTL caps how long a validated access token is cached (default: 30s)
	TTL time.Duration `envconfig:"SESSION_CACHE_TTL" default:"30s"`
}

// RateLimitConfig holds per-client rate limit settings for the API.
type RateLimitConfig struct {
	// RPS is the sustained requests per second per client (default: 10)
	RPS float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`

	// Burst is the bucket size per client (default: 30)
	Burst int `envconfig:"RATE_LIMIT_BURST" default:"30"`
}

// IsProduction reports whether the production origin policy applies.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), "production")
}

// OriginPolicy returns the mode's named policy extended with configured origins.
func (c *Config) OriginPolicy() (domain.OriginPolicy, error) {
	base := domain.DevelopmentOrigins
	if c.IsProduction() {
		base = domain.ProductionOrigins
	}
	return base.Extend(c.Edge.AllowedOrigins...)
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	if err := envconfig.Process("APP", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Identity); err != nil {
		return nil, fmt.Errorf("failed to load identity config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Edge); err != nil {
		return nil, fmt.Errorf("failed to load edge config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Cache); err != nil {
		return nil, fmt.Errorf("failed to load cache config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if _, err := domain.ParseFailurePolicy(c.Edge.TransientPolicy); err != nil {
		return fmt.Errorf("invalid APP_AUTH_TRANSIENT_POLICY: %w", err)
	}
	if _, err := domain.ParseFailurePolicy(c.Edge.TerminalPolicy); err != nil {
		return fmt.Errorf("invalid APP_AUTH_TERMINAL_POLICY: %w", err)
	}
	if _, err := c.OriginPolicy(); err != nil {
		return fmt.Errorf("invalid APP_CORS_ALLOWED_ORIGINS: %w", err)
	}
	return nil
}

// loadDotEnv loads each file that exists. Earlier files win because
// godotenv never overrides variables that are already set.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
