package runtime

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// traceSpan starts a span for a pass when a tracer is configured and returns
// the function that ends it. With no tracer it costs a nil check.
//
// The engine has no request context to hang spans off: passes are driven by
// the host's scheduler, not an inbound call. Spans therefore root in the
// background context; hosts that want parentage should wrap the pass methods
// themselves.
func (r *Runtime) traceSpan(name string, attrs ...attribute.KeyValue) func(error) {
	if r.tracer == nil {
		return func(error) {}
	}

	_, span := r.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))

	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
