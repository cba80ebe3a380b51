package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "HOST", "ALLOW_ORIGINS",
	"STORAGE_DRIVER", "STORAGE_PATH", "STORAGE_COMPRESS", "STORAGE_KEY",
	"SAVE_WINDOW", "SAVE_DELAY", "SEARCH_ENGINES_FILE",
	"LOG_LEVEL", "LOG_DEV",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
}

// cleanEnv unsets every variable the config reads for the duration of the test
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		if v, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)

	// Storage config
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "browser", cfg.Storage.Key)
	assert.False(t, cfg.Storage.Compress)

	// Session config
	assert.Equal(t, 400*time.Millisecond, cfg.Session.SaveWindow)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.SaveDelay)
	assert.Empty(t, cfg.Session.SearchEnginesFile)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	cleanEnv(t)

	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"ALLOW_ORIGINS":       "http://localhost:3000,http://127.0.0.1:5173",
		"STORAGE_DRIVER":      "sqlite",
		"STORAGE_PATH":        "/var/lib/browser/session.db",
		"STORAGE_COMPRESS":    "true",
		"STORAGE_KEY":         "profile-1",
		"SAVE_WINDOW":         "1s",
		"SAVE_DELAY":          "1500ms",
		"SEARCH_ENGINES_FILE": "/etc/browser/engines.yaml",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_RPS":      "500",
		"RATE_LIMIT_BURST":    "1000",
		"RATE_LIMIT_ENABLED":  "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:5173"}, cfg.Server.AllowOrigins)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/browser/session.db", cfg.Storage.Path)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, "profile-1", cfg.Storage.Key)

	assert.Equal(t, time.Second, cfg.Session.SaveWindow)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.SaveDelay)
	assert.Equal(t, "/etc/browser/engines.yaml", cfg.Session.SearchEnginesFile)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 400*time.Millisecond, cfg.Session.SaveWindow)
}

func TestSessionTimingValidation(t *testing.T) {
	tests := []struct {
		name    string
		window  string
		delay   string
		wantErr bool
	}{
		{name: "defaults", wantErr: false},
		{name: "delay equal to window", window: "200ms", delay: "200ms", wantErr: false},
		{name: "delay shorter than window", window: "500ms", delay: "100ms", wantErr: true},
		{name: "zero window", window: "0s", delay: "100ms", wantErr: true},
		{name: "unparseable", window: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			if tt.window != "" {
				t.Setenv("SAVE_WINDOW", tt.window)
			}
			if tt.delay != "" {
				t.Setenv("SAVE_DELAY", tt.delay)
			}

			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cleanEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "many")

	cfg := LoadOrDefault()

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "8000", cfg.Server.Port)
}

func TestEmptyStorageKeyRejected(t *testing.T) {
	cfg := Default()
	cfg.Storage.Key = ""
	assert.Error(t, cfg.Validate())
}
