package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the eventctx tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("eventctx")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartContextSpan starts a span covering an event context's lifetime.
	StartContextSpan(ctx context.Context, location, contextID, correlationID string) (context.Context, trace.Span)

	// StartScopeSpan starts a span for a processing scope.
	// The scope span should be a child of the context span.
	StartScopeSpan(ctx context.Context, location string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartContextSpan starts a span covering an event context's lifetime.
func (m *otelSpanManager) StartContextSpan(ctx context.Context, location, contextID, correlationID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventctx.context",
		trace.WithAttributes(
			attribute.String("context.location", location),
			attribute.String("context.id", contextID),
			attribute.String("context.correlation_id", correlationID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartScopeSpan starts a span for a processing scope.
func (m *otelSpanManager) StartScopeSpan(ctx context.Context, location string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventctx.scope."+location,
		trace.WithAttributes(
			attribute.String("scope.location", location),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
