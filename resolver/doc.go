// Package resolver serves the invoicing reads and writes behind the external
// API.
//
// Reads accept an external identifier, a bare projection or a legacy UUID.
// The input is first reduced to its canonical external identifier, so every
// spelling of the same id shares one cache entry. Results are formatted rows
// in which ids and foreign keys are external identifiers.
//
// Each read is cached through a cache.Reader and files its result under
// entity tags:
//
//	customer:all                    every customer list
//	customer:<gid>                  one customer, and reads scoped to it
//	job:customer:<gid>              jobs of a customer
//	invoice:customer:<gid>          invoices of a customer
//	invoice:job:<gid>               invoices carrying a job's status
//
// Writes invalidate the tags their change can affect once the store has
// committed. A read that was already fetching when a write invalidated may
// still store its stale result; that window closes when the entry expires.
package resolver
