// Package lookup turns external identifiers into storage query predicates
// and storage rows into their externally visible form.
//
// Because the identifier projection is lossy, a read-by-id can never be an
// equality match on the storage UUID. A Predicate instead describes either a
// 13-character hex prefix that the row's UUID must start with, or (where an
// indexed projection column exists) the decimal projection to match exactly.
// More than one row may satisfy a prefix predicate; First takes the first one
// and reports the collision through a CollisionHook.
package lookup
