package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Session   SessionConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string   `envconfig:"PORT" default:"8000"`
	Host         string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	Driver   string `envconfig:"STORAGE_DRIVER" default:"file"`
	Path     string `envconfig:"STORAGE_PATH" default:"/tmp/browser-session"`
	Compress bool   `envconfig:"STORAGE_COMPRESS" default:"false"`
	Key      string `envconfig:"STORAGE_KEY" default:"browser"`
}

// SessionConfig holds save scheduling and registry settings.
type SessionConfig struct {
	SaveWindow        time.Duration `envconfig:"SAVE_WINDOW" default:"400ms"`
	SaveDelay         time.Duration `envconfig:"SAVE_DELAY" default:"500ms"`
	SearchEnginesFile string        `envconfig:"SEARCH_ENGINES_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the session cannot run with.
func (c *Config) Validate() error {
	if c.Session.SaveWindow <= 0 {
		return fmt.Errorf("invalid config: SAVE_WINDOW must be positive, got %s", c.Session.SaveWindow)
	}
	if c.Session.SaveDelay < c.Session.SaveWindow {
		return fmt.Errorf("invalid config: SAVE_DELAY (%s) must not be shorter than SAVE_WINDOW (%s)",
			c.Session.SaveDelay, c.Session.SaveWindow)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("invalid config: STORAGE_KEY must not be empty")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			AllowOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver:   "file",
			Path:     "/tmp/browser-session",
			Compress: false,
			Key:      "browser",
		},
		Session: SessionConfig{
			SaveWindow: 400 * time.Millisecond,
			SaveDelay:  500 * time.Millisecond,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
