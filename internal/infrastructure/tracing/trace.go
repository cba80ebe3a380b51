package tracing

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/id"
)

const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"

	spanBuffer = 1000
)

// TraceID represents a unique trace identifier
type TraceID string

// SpanID represents a unique span identifier
type SpanID string

// Span represents a single operation in a trace
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	Service    string
	StartTime  time.Time
	Duration   time.Duration
	Tags       map[string]string
	Error      error
	StatusCode int
}

// Tracer collects finished spans and logs them
type Tracer struct {
	service string
	logger  *logging.Logger
	spans   chan *Span
	done    chan struct{}
	once    sync.Once

	processed atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a tracer and starts its collector. Close stops it.
func New(service string, logger *logging.Logger) *Tracer {
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.Named("trace"),
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collectSpans()
	return t
}

// StartSpan creates a span, continuing the trace found in ctx if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewTraceID())
	}

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.NewSpanID()),
		ParentID:  GetSpanID(ctx),
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}

	return span, WithSpan(ctx, traceID, span.SpanID)
}

// Finish marks the span as complete
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records an error in the span
func (s *Span) SetError(err error) {
	s.Error = err
	if s.StatusCode < http.StatusInternalServerError {
		s.StatusCode = http.StatusInternalServerError
	}
}

// SetStatus sets the HTTP status code
func (s *Span) SetStatus(code int) {
	s.StatusCode = code
}

// Submit hands a finished span to the collector. It never blocks; spans
// submitted after Close or with a full buffer are dropped.
func (t *Tracer) Submit(span *Span) {
	select {
	case <-t.done:
		t.dropped.Add(1)
		return
	default:
	}

	select {
	case t.spans <- span:
	default:
		t.dropped.Add(1)
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// Close stops the collector. Buffered spans are still logged.
func (t *Tracer) Close() {
	t.once.Do(func() { close(t.done) })
}

// Stats reports how many spans were logged and dropped
func (t *Tracer) Stats() (processed, dropped uint64) {
	return t.processed.Load(), t.dropped.Load()
}

func (t *Tracer) collectSpans() {
	for {
		select {
		case span := <-t.spans:
			t.processSpan(span)
		case <-t.done:
			for {
				select {
				case span := <-t.spans:
					t.processSpan(span)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) processSpan(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", span.Service),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	if span.StatusCode != 0 {
		fields = append(fields, zap.Int("status", span.StatusCode))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Error != nil {
		fields = append(fields, zap.Error(span.Error))
		t.logger.Warn("span completed with error", fields...)
	} else {
		t.logger.Debug("span completed", fields...)
	}
	t.processed.Add(1)
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// WithSpan returns a context carrying the trace and span IDs
func WithSpan(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) SpanID {
	if spanID, ok := ctx.Value(spanIDKey).(SpanID); ok {
		return spanID
	}
	return ""
}

// ExtractTraceContext reads the trace context from request headers
func ExtractTraceContext(h http.Header) (TraceID, SpanID) {
	return TraceID(h.Get(HeaderTraceID)), SpanID(h.Get(HeaderSpanID))
}

// InjectTraceContext writes the trace context in ctx into headers
func InjectTraceContext(ctx context.Context, h http.Header) {
	if traceID := GetTraceID(ctx); traceID != "" {
		h.Set(HeaderTraceID, string(traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		h.Set(HeaderSpanID, string(spanID))
	}
}

// Field returns a zap field tagging a log line with the trace in ctx
func Field(ctx context.Context) zap.Field {
	return zap.String("trace_id", string(GetTraceID(ctx)))
}

// FormatTrace returns a formatted trace string for logging
func FormatTrace(traceID TraceID, spanID SpanID) string {
	return fmt.Sprintf("[trace:%s span:%s]", traceID, spanID)
}
