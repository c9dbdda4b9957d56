// Package config loads invoicekit configuration from the environment.
//
// Every variable carries the INVOICEKIT_ prefix. Values naming a secret or a
// path may reference other environment variables as ${VAR}; those are
// expanded strictly, so a missing reference is an error rather than an empty
// string.
package config
