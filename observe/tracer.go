package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation kinds.
const (
	KindRead  = "read"
	KindWrite = "write"
)

// OperationMeta describes a resolver operation for telemetry purposes.
type OperationMeta struct {
	Entity string // Entity kind the operation acts on (e.g. "invoice")
	Name   string // Operation name (required)
	Kind   string // KindRead or KindWrite (optional)
	Cached bool   // Whether reads go through the cache
}

// SpanName returns the deterministic span name for this operation.
// Format: invoicekit.<entity>.<name> or invoicekit.<name>
func (m OperationMeta) SpanName() string {
	return "invoicekit." + m.OperationID()
}

// OperationID returns the qualified operation identifier.
func (m OperationMeta) OperationID() string {
	if m.Entity != "" {
		return m.Entity + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation.
	StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// attributes are the op.* labels shared by spans and metrics.
func (m OperationMeta) attributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	attrs = append(attrs,
		attribute.String("op.id", m.OperationID()),
		attribute.String("op.name", m.Name),
	)
	if m.Entity != "" {
		attrs = append(attrs, attribute.String("op.entity", m.Entity))
	}
	if m.Kind != "" {
		attrs = append(attrs, attribute.String("op.kind", m.Kind))
	}
	if m.Cached {
		attrs = append(attrs, attribute.Bool("op.cached", true))
	}
	return attrs
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("op.error", false)) // flipped in EndSpan

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OperationMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
