package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientTTL is how long an idle client's limiter is kept
const clientTTL = 10 * time.Minute

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiters tracks one token bucket per client IP
type limiters struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newLimiters(cfg RateLimitConfig) *limiters {
	return &limiters{
		cfg:       cfg,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}
}

func (l *limiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > clientTTL {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > clientTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (l *limiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	l := newLimiters(cfg)

	return func(c *gin.Context) {
		if !l.get(c.ClientIP(), time.Now()).Allow() {
			abortLimited(c)
			return
		}
		c.Next()
	}
}

// GlobalRateLimit creates a global rate limiting middleware.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			abortLimited(c)
			return
		}
		c.Next()
	}
}

func abortLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded",
	})
}
