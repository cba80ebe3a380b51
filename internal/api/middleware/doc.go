// Package middleware provides HTTP middleware for the browser session API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the UI shell
//   - RateLimit: Per-IP token bucket rate limiting
//   - GlobalRateLimit: One bucket shared by all clients
//
// Rate Limiting:
//   - Per-IP tracking; limiters idle for ten minutes are swept
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Configurable RPS and burst capacity
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
