package observe

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newInstrumentedMiddleware(t *testing.T, logBuf *bytes.Buffer) (*Middleware, *tracetest.SpanRecorder, func() int64) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader, mp := newTestMeter()
	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	mw := NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", logBuf))
	total := func() int64 {
		return sumValue(t, collect(t, reader), MetricCalls)
	}
	return mw, spans, total
}

// TestMiddleware_SuccessPath verifies successful execution records telemetry.
func TestMiddleware_SuccessPath(t *testing.T) {
	var logs bytes.Buffer
	mw, spans, total := newInstrumentedMiddleware(t, &logs)

	meta := OperationMeta{Entity: "customer", Name: "get", Kind: KindRead}
	wrapped := mw.Wrap(func(ctx context.Context, op OperationMeta, in any) (any, error) {
		return "result", nil
	})

	result, err := wrapped(context.Background(), meta, "c1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result != "result" {
		t.Errorf("expected result %q, got %v", "result", result)
	}

	ended := spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "invoicekit.customer.get" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if total() != 1 {
		t.Errorf("calls = %d, want 1", total())
	}
	if !strings.Contains(logs.String(), `"msg":"operation completed"`) {
		t.Errorf("expected completion log, got %s", logs.String())
	}
}

// TestMiddleware_ErrorPath verifies failed execution records error telemetry.
func TestMiddleware_ErrorPath(t *testing.T) {
	var logs bytes.Buffer
	mw, spans, _ := newInstrumentedMiddleware(t, &logs)

	testErr := errors.New("not found")
	wrapped := mw.Wrap(func(ctx context.Context, op OperationMeta, in any) (any, error) {
		return nil, testErr
	})

	_, err := wrapped(context.Background(), OperationMeta{Entity: "invoice", Name: "get"}, nil)
	if !errors.Is(err, testErr) {
		t.Fatalf("expected %v, got %v", testErr, err)
	}
	if len(spans.Ended()) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans.Ended()))
	}

	entry := decodeEntry(t, strings.TrimSpace(logs.String()))
	if entry["level"] != "error" || entry["error"] != "not found" {
		t.Errorf("unexpected log entry: %v", entry)
	}
	if entry["op.id"] != "invoice.get" {
		t.Errorf("op.id = %v, want invoice.get", entry["op.id"])
	}
}

// TestMiddleware_DoesNotMutateInput verifies input passes through untouched.
func TestMiddleware_DoesNotMutateInput(t *testing.T) {
	mw := NoopMiddleware()

	input := map[string]any{"status": "paid"}
	snapshot := map[string]any{"status": "paid"}

	wrapped := mw.Wrap(func(ctx context.Context, op OperationMeta, in any) (any, error) {
		return in, nil
	})
	out, _ := wrapped(context.Background(), OperationMeta{Name: "echo"}, input)

	if !reflect.DeepEqual(input, snapshot) {
		t.Errorf("input mutated: %v", input)
	}
	if !reflect.DeepEqual(out, input) {
		t.Errorf("output = %v, want %v", out, input)
	}
}

// TestMiddleware_PropagatesContext verifies the span is visible to the wrapped function.
func TestMiddleware_PropagatesContext(t *testing.T) {
	var logs bytes.Buffer
	mw, _, _ := newInstrumentedMiddleware(t, &logs)

	var sawSpan bool
	wrapped := mw.Wrap(func(ctx context.Context, op OperationMeta, in any) (any, error) {
		sawSpan = trace.SpanFromContext(ctx).SpanContext().IsValid()
		return nil, nil
	})
	_, _ = wrapped(context.Background(), OperationMeta{Name: "ctx"}, nil)

	if !sawSpan {
		t.Error("wrapped function should receive a context carrying the span")
	}
}

func TestInstrument_Typed(t *testing.T) {
	var logs bytes.Buffer
	mw, spans, total := newInstrumentedMiddleware(t, &logs)

	get := Instrument(mw, OperationMeta{Entity: "product", Name: "get"}, func(_ context.Context, id int64) (string, error) {
		return "widget", nil
	})

	got, err := get(context.Background(), 7)
	if err != nil || got != "widget" {
		t.Fatalf("get() = (%q, %v), want (widget, nil)", got, err)
	}
	if len(spans.Ended()) != 1 || total() != 1 {
		t.Error("typed operation should be instrumented")
	}
}

func TestInstrument_ErrorReturnsZeroValue(t *testing.T) {
	get := Instrument(NoopMiddleware(), OperationMeta{Name: "get"}, func(_ context.Context, _ string) (*int, error) {
		return nil, errors.New("boom")
	})

	got, err := get(context.Background(), "x")
	if err == nil || got != nil {
		t.Errorf("get() = (%v, %v), want (nil, error)", got, err)
	}
}

func TestInstrument_NilMiddleware(t *testing.T) {
	calls := 0
	get := Instrument[string, int](nil, OperationMeta{Name: "get"}, func(_ context.Context, _ string) (int, error) {
		calls++
		return 1, nil
	})
	if got, _ := get(context.Background(), "x"); got != 1 || calls != 1 {
		t.Errorf("get() = %d after %d calls", got, calls)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	mw, err := MiddlewareFromObserver(obs)
	if err != nil || mw == nil {
		t.Fatalf("MiddlewareFromObserver() = (%v, %v)", mw, err)
	}
}
