// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and derive a named child from it, so every
// line carries the component ("session", "scheduler", "http", ...).
//
// Example Usage:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	log := logger.Named("session")
//	log.Info("Session restored", zap.Int("tabs", 3))
//	log.Warn("Deferred save failed", zap.Error(err))
package logging
