package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SESSION_SIGNING_KEY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, devSigningKey, cfg.Session.SigningKey)
	assert.Equal(t, "better-auth.session_token", cfg.Session.CookieName)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DOMAINDESK_ADDR", ":9090")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://desk@localhost/desk")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://ops.example.com")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

func TestFromEnvProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SIGNING_KEY", "")

	cfg, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SIGNING_KEY")
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidateRejectsPostgresWithoutURL(t *testing.T) {
	cfg := Server{
		Session:   SessionConfig{SigningKey: "k"},
		Storage:   StorageConfig{Backend: StoragePostgres},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
