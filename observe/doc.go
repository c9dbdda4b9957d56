// Package observe provides observability primitives for invoicekit operations.
//
// It wraps OpenTelemetry tracing and metrics with a small JSON logger, and
// exposes cache statistics and identifier collisions as metrics. Resolver
// operations are instrumented through Middleware.
package observe
