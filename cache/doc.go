// Package cache provides the process-local, tag-indexed read cache shared by
// every resolver.
//
// It provides a Store with TTL expiry and strict LRU eviction, a tag index
// for group invalidation, deterministic key derivation from an operation
// name and its arguments, and Wrap, which adds cache-aside behavior to any
// read function.
//
// The cache is single-process and in-memory only. A read that misses, then
// fetches, then stores is not atomic: an invalidation that runs while the
// fetch is in flight can be overwritten by the fetch's result.
package cache
