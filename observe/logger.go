package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// Logger writes structured entries. Implementations must be safe for
// concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// WithOperation attaches the op.* fields describing meta.
	WithOperation(meta OperationMeta) Logger
	// With attaches fields to every entry of the returned logger.
	With(fields ...Field) Logger
}

// Field is a single key/value pair on a log entry.
type Field struct {
	Key   string
	Value any
}

// LogLevel orders entries by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// ParseLogLevel maps a level name to a LogLevel. Unknown names are info.
func ParseLogLevel(s string) LogLevel {
	for lvl, name := range levelNames {
		if strings.EqualFold(s, name) {
			return lvl
		}
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// jsonLogger emits one JSON object per line. Loggers derived through With
// share the parent's writer and lock.
type jsonLogger struct {
	min   LogLevel
	out   io.Writer
	mu    *sync.Mutex
	attrs map[string]any
	now   func() time.Time
}

// NewLogger returns a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{
		min:   ParseLogLevel(level),
		out:   w,
		mu:    new(sync.Mutex),
		attrs: map[string]any{},
		now:   time.Now,
	}
}

func (l *jsonLogger) WithOperation(meta OperationMeta) Logger {
	fields := []Field{
		{Key: "op.id", Value: meta.OperationID()},
		{Key: "op.name", Value: meta.Name},
	}
	if meta.Entity != "" {
		fields = append(fields, Field{Key: "op.entity", Value: meta.Entity})
	}
	if meta.Kind != "" {
		fields = append(fields, Field{Key: "op.kind", Value: meta.Kind})
	}
	return l.With(fields...)
}

func (l *jsonLogger) With(fields ...Field) Logger {
	child := *l
	child.attrs = maps.Clone(l.attrs)
	for _, f := range fields {
		child.attrs[f.Key] = redact(f)
	}
	return &child
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) write(_ context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	entry := maps.Clone(l.attrs)
	for _, f := range fields {
		entry[f.Key] = redact(f)
	}
	entry["timestamp"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(entry); err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(buf.Bytes())
}

func redact(f Field) any {
	if slices.Contains(RedactedFields, strings.ToLower(f.Key)) {
		return "[REDACTED]"
	}
	return f.Value
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...Field) {}
func (noopLogger) Info(context.Context, string, ...Field)  {}
func (noopLogger) Warn(context.Context, string, ...Field)  {}
func (noopLogger) Error(context.Context, string, ...Field) {}
func (n noopLogger) WithOperation(OperationMeta) Logger    { return n }
func (n noopLogger) With(...Field) Logger                  { return n }

var (
	_ Logger = (*jsonLogger)(nil)
	_ Logger = noopLogger{}
)
