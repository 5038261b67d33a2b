package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// unsetEnv clears keys for the test and again afterwards, since godotenv
// writes straight to the process environment.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, EnvPort, EnvRouteServiceURL, EnvNetworkFile, EnvLogLevel)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultRouteServiceURL, cfg.RouteService.URL)
	assert.Equal(t, 30*time.Second, cfg.RouteServiceTimeout())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.Empty(t, cfg.Network.File)
}

func TestLoadFile(t *testing.T) {
	unsetEnv(t, EnvPort, EnvRouteServiceURL, EnvNetworkFile, EnvLogLevel)

	path := writeFile(t, "config.yml", `
server:
  port: 9090
  allowed_origins: ["http://localhost:5173"]
route_service:
  url: http://planner:5000
  timeout_ms: 2500
  cache_ttl: 0s
network:
  file: maps/pune.yml
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://planner:5000", cfg.RouteService.URL)
	assert.Equal(t, 2500*time.Millisecond, cfg.RouteServiceTimeout())
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())
	assert.Equal(t, 256, cfg.RouteService.CacheSize, "unset keys keep their defaults")
	assert.Equal(t, "maps/pune.yml", cfg.Network.File)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadEnvOverrides(t *testing.T) {
	unsetEnv(t, EnvPort, EnvRouteServiceURL, EnvNetworkFile, EnvLogLevel)

	path := writeFile(t, "config.yml", "server:\n  port: 9090\n")
	env := writeFile(t, ".env", EnvPort+"=7000\n"+EnvRouteServiceURL+"=http://from-env:5000\n")
	local := writeFile(t, ".env.local", EnvPort+"=7001\n")

	cfg, err := Load(path, env, local, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port, ".env.local overrides .env")
	assert.Equal(t, "http://from-env:5000", cfg.RouteService.URL)

	t.Setenv(EnvNetworkFile, "other.yml")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.yml", cfg.Network.File)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
}

func TestLoadErrors(t *testing.T) {
	unsetEnv(t, EnvPort, EnvRouteServiceURL, EnvNetworkFile, EnvLogLevel)

	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 0\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"bad url", "route_service:\n  url: not a url\n"},
		{"bad log level", "log:\n  level: chatty\n"},
		{"bad duration", "sessions:\n  ttl: soon\n"},
		{"negative timeout", "route_service:\n  timeout_ms: -1\n"},
		{"empty origin", "server:\n  allowed_origins: [\"\"]\n"},
		{"malformed yaml", "server: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yml", tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("non-numeric port env", func(t *testing.T) {
		t.Setenv(EnvPort, "eighty")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestExampleConfig(t *testing.T) {
	unsetEnv(t, EnvPort, EnvRouteServiceURL, EnvNetworkFile, EnvLogLevel)

	cfg, err := Load(filepath.Join("..", "..", "config.example.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().RouteService, cfg.RouteService)
	assert.Equal(t, Default().Sessions, cfg.Sessions)
}
