/*
Package tracing provides lightweight request tracing for the session server.

# Overview

Every HTTP request gets a span. The trace ID is taken from the X-Trace-ID
header when the caller sends one and generated otherwise, then echoed back
in the response so a UI shell can quote it when reporting a problem. The
trace ID travels in the request context, so the session can tag the log
lines of a save it schedules with the request that caused it.

# Usage

	tracer := tracing.New("browser", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "session.restore")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	span.SetTag("outcome", "restored")

# Trace Format

Traces use HTTP headers for propagation:
  - X-Trace-ID: Unique identifier for entire request flow
  - X-Span-ID: Identifier for current operation

# Performance

Completed spans are buffered (1000 spans) and logged by a single collector
goroutine. When the buffer is full spans are dropped, never blocking the
request path.
*/
package tracing
