package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Instrument names. The prometheus exporter serves them with dots turned
// into underscores and the unit appended.
const (
	MetricCalls    = "invoicekit.op.calls"
	MetricErrors   = "invoicekit.op.errors"
	MetricDuration = "invoicekit.op.duration"
)

// Metrics records one sample per resolver operation call. Implementations
// must be safe for concurrent use and must not block.
type Metrics interface {
	RecordExecution(ctx context.Context, meta OperationMeta, duration time.Duration, err error)
}

type opMetrics struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the operation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*opMetrics, error) {
	calls, errCalls := meter.Int64Counter(MetricCalls,
		metric.WithDescription("Resolver operation calls"),
		metric.WithUnit("{call}"))
	failures, errFailures := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Resolver operation calls that returned an error"),
		metric.WithUnit("{call}"))
	duration, errDuration := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Resolver operation latency"),
		metric.WithUnit("s"))
	if err := errors.Join(errCalls, errFailures, errDuration); err != nil {
		return nil, err
	}
	return &opMetrics{calls: calls, errors: failures, duration: duration}, nil
}

func (m *opMetrics) RecordExecution(ctx context.Context, meta OperationMeta, duration time.Duration, err error) {
	labels := metric.WithAttributes(meta.attributes()...)
	m.calls.Add(ctx, 1, labels)
	if err != nil {
		m.errors.Add(ctx, 1, labels)
	}
	m.duration.Record(ctx, duration.Seconds(), labels)
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(context.Context, OperationMeta, time.Duration, error) {}
