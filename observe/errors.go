package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")

	// ErrNilObserver is returned by MiddlewareFromObserver.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrNilStatsSource is returned by RegisterCacheMetrics.
	ErrNilStatsSource = errors.New("observe: stats source is nil")
)

// ValidLogLevels lists the accepted log levels. Empty means info.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields are log field keys whose values are never written.
// Admin requests carry bearer tokens and the JWT secret lives in config.
var RedactedFields = []string{
	"authorization",
	"token",
	"secret",
	"jwt_secret",
	"password",
	"email",
}
