package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "backend:\n  base_url: http://backend.local/api\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "auth-token", cfg.Auth.CookieName)
	assert.Equal(t, []string{"admin"}, cfg.Auth.AdminRoles)
	assert.Equal(t, 60*time.Second, cfg.Security.Window)
	assert.Equal(t, 100, cfg.Security.MaxRequests)
	assert.Equal(t, 100, cfg.Server.RateLimitBurst, "burst never undercuts the window")
	assert.Equal(t, "Local", cfg.Lab.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Len(t, cfg.Lab.Computers, 9)
	assert.Equal(t, "general", cfg.Lab.Computers[4].Category)
	assert.Equal(t, "specialized", cfg.Lab.Computers[5].Category)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://from-file/api
auth:
  jwt_secret: file-secret
security:
  window_seconds: 10
  max_requests: 5
  limits:
    login: 2
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://from-env/api")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "http://from-env/api", cfg.Backend.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Security.Window)
	assert.Equal(t, 5, cfg.Security.MaxRequests)
	assert.Equal(t, map[string]int{"login": 2}, cfg.Security.Limits)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
}

func TestApplyDefaults_BurstCoversLargestLimit(t *testing.T) {
	cfg := &Config{Security: SecurityConfig{MaxRequests: 50, Limits: map[string]int{"products": 200, "login": 10}}}
	cfg.ApplyDefaults()
	assert.Equal(t, 200, cfg.Server.RateLimitBurst)

	cfg = &Config{Server: ServerConfig{RateLimitBurst: 7}}
	cfg.ApplyDefaults()
	assert.Equal(t, 7, cfg.Server.RateLimitBurst, "an explicit burst is kept")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
