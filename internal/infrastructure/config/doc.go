// Package config provides 12-factor configuration management for the
// browser session service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Storage: snapshot store backend (memory, file, sqlite) and key
//   - Session: save debounce window/delay, search engine registry file
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - STORAGE_DRIVER, STORAGE_PATH, STORAGE_COMPRESS, STORAGE_KEY
//   - SAVE_WINDOW, SAVE_DELAY, SEARCH_ENGINES_FILE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
