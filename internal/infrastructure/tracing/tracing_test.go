package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(tracer *Tracer, seen *TraceID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/session", func(c *gin.Context) {
		*seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	router.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("store unavailable"))
		c.Status(http.StatusInternalServerError)
	})
	return router
}

func TestHTTPMiddlewareGeneratesTrace(t *testing.T) {
	tracer := New("browser", nil)
	defer tracer.Close()

	var seen TraceID
	router := setupRouter(tracer, &seen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	require.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get(HeaderTraceID)
	assert.True(t, strings.HasPrefix(traceID, "trace_"), traceID)
	assert.True(t, strings.HasPrefix(w.Header().Get(HeaderSpanID), "span_"))
	assert.Equal(t, TraceID(traceID), seen)
}

func TestHTTPMiddlewareContinuesIncomingTrace(t *testing.T) {
	tracer := New("browser", nil)
	defer tracer.Close()

	var seen TraceID
	router := setupRouter(tracer, &seen)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderTraceID, "trace_from_shell")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace_from_shell", w.Header().Get(HeaderTraceID))
	assert.Equal(t, TraceID("trace_from_shell"), seen)
}

func TestSpansAreCollected(t *testing.T) {
	tracer := New("browser", nil)

	var seen TraceID
	router := setupRouter(tracer, &seen)
	for _, path := range []string{"/session", "/broken", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Eventually(t, func() bool {
		processed, _ := tracer.Stats()
		return processed == 3
	}, time.Second, 5*time.Millisecond)

	tracer.Close()
	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Submit(span)

	_, dropped := tracer.Stats()
	assert.Equal(t, uint64(1), dropped)
}

func TestStartSpanNesting(t *testing.T) {
	tracer := New("browser", nil)
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "restore")
	child, childCtx := tracer.StartSpan(ctx, "decode")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))

	h := http.Header{}
	InjectTraceContext(childCtx, h)
	traceID, spanID := ExtractTraceContext(h)
	assert.Equal(t, parent.TraceID, traceID)
	assert.Equal(t, child.SpanID, spanID)
}

func TestSpanErrorSetsStatus(t *testing.T) {
	span := &Span{Tags: map[string]string{}}
	span.SetStatus(http.StatusNotFound)
	span.SetError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, span.StatusCode)

	span.SetStatus(http.StatusServiceUnavailable)
	span.SetError(errors.New("again"))
	assert.Equal(t, http.StatusServiceUnavailable, span.StatusCode)
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t, "[trace:t1 span:s1]", FormatTrace("t1", "s1"))
	assert.Equal(t, "", Field(context.Background()).String)
}
