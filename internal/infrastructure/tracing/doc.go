/*
Package tracing provides lightweight request tracing for the storage backend.

# Overview

A trace follows one request from the shell front-end through the router and,
for the remote bridge, into the native shell. Spans are logged through zap
when they finish.

# Usage

	tracer := tracing.New("storage", logger)
	defer tracer.Close()

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Outgoing calls carry the trace
	headers := map[string]string{}
	tracing.InjectTraceContext(ctx, headers)

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

Traces use HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation
*/
package tracing
