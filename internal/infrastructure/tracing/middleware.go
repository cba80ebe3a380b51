package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware creates Gin middleware for HTTP tracing
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, parentID := ExtractTraceContext(c.Request.Header)
		ctx := WithSpan(c.Request.Context(), traceID, parentID)

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.url", c.Request.URL.String())

		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		span.Finish()
		tracer.Submit(span)
	}
}
