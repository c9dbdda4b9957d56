// Package admin serves the operational HTTP surface of invoicekit.
//
// Health endpoints (/healthz, /readyz, /health) and /metrics are always
// mounted. Outside production the /admin routes expose read-cache
// statistics, a full clear, tag invalidation and identifier decoding.
// When an authenticator is configured, /admin requires the admin role.
package admin
