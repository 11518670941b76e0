package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_IDENTITY_URL", "https://demo.supabase.co")
	t.Setenv("APP_IDENTITY_ANON_KEY", "anon")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "plain", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.Identity.Timeout)
	assert.Equal(t, time.Minute, cfg.Identity.RefreshMargin)
	assert.Equal(t, "open", cfg.Edge.TransientPolicy)
	assert.Equal(t, "open", cfg.Edge.TerminalPolicy)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 30, cfg.RateLimit.Burst)
}

func TestLoadRequiresIdentity(t *testing.T) {
	// register restores, then remove the variables entirely
	t.Setenv("APP_IDENTITY_URL", "")
	t.Setenv("APP_IDENTITY_ANON_KEY", "")
	require.NoError(t, os.Unsetenv("APP_IDENTITY_URL"))
	require.NoError(t, os.Unsetenv("APP_IDENTITY_ANON_KEY"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", `^https://shop\.example\.com$,^https://admin\.example\.com$`)
	t.Setenv("APP_AUTH_TRANSIENT_POLICY", "closed")
	t.Setenv("APP_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("APP_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Len(t, cfg.Edge.AllowedOrigins, 2)
	assert.Equal(t, "closed", cfg.Edge.TransientPolicy)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)

	policy, err := cfg.OriginPolicy()
	require.NoError(t, err)
	assert.Equal(t, "production", policy.Name)
	assert.True(t, policy.Allows("https://shop.example.com"))
	assert.False(t, policy.Allows("http://localhost:3000"))
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_AUTH_TERMINAL_POLICY", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadOriginPattern(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "(")

	_, err := Load()
	assert.Error(t, err)
}

func TestDevelopmentPolicyKeepsLocalhost(t *testing.T) {
	cfg := &Config{App: AppConfig{Env: "development"}}

	policy, err := cfg.OriginPolicy()
	require.NoError(t, err)
	assert.Equal(t, "development", policy.Name)
	assert.True(t, policy.Allows("http://localhost:3000"))
}
