// Package storage defines the invoicing records and the errors shared by
// storage backends.
//
// Records carry their storage identifiers (UUIDs, or an integer for
// products). Row renders a record as a lookup.Row so it can be formatted
// into its external form with the entity's ForeignKeys table.
package storage
