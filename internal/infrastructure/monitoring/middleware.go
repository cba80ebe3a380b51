package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Use the route template so /tabs/3 and /tabs/4 share a series
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start))
	}
}

// Timer measures a snapshot write
type Timer struct {
	start   time.Time
	metrics *Metrics
	path    string
}

// NewTimer starts timing a write on the given save path
func NewTimer(metrics *Metrics, path string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		path:    path,
	}
}

// Stop records the write. A nil metrics collector makes it a no-op.
func (t *Timer) Stop(size int, err error) {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordSave(t.path, size, time.Since(t.start), err)
}
