package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc is the signature of a read operation that can be cached.
type FetchFunc[A, R any] func(ctx context.Context, args A) (R, error)

// TagFunc returns the tags a fetched result should be filed under.
type TagFunc[A, R any] func(args A, result R) []string

// Invalidator evicts every entry filed under any of tags and returns how many
// entries were removed. Mutations call it after they commit.
type Invalidator func(ctx context.Context, tags ...string) int

// Reader adds cache-aside behavior to read operations.
//
// Contract:
//   - Concurrency: safe for concurrent use; wrapped functions may be called concurrently.
//   - Errors: fetch errors propagate unchanged and are never cached.
//   - Ownership: cached results are shared between callers and must not be mutated.
type Reader struct {
	cache     Cache
	keyer     Keyer
	policy    Policy
	enabled   atomic.Bool
	suspended atomic.Int64 // open Suspend calls; caching is off while > 0
	group     singleflight.Group
}

// NewReader creates a new reader over c.
// If keyer is nil, DefaultKeyer is used.
func NewReader(c Cache, keyer Keyer, policy Policy) *Reader {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	r := &Reader{
		cache:  c,
		keyer:  keyer,
		policy: policy,
	}
	r.enabled.Store(true)
	return r
}

// Cache returns the underlying cache.
func (r *Reader) Cache() Cache {
	return r.cache
}

// Policy returns the reader's policy.
func (r *Reader) Policy() Policy {
	return r.policy
}

// SetEnabled flips the operator kill switch. While caching is off, wrapped
// functions call straight through to their fetch without reading or writing
// the cache, and Wrap returns fetch unmodified. Open suspensions do not
// change the switch; it takes effect again once they end.
func (r *Reader) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether caching is in effect: the switch is on and no
// suspension is open.
func (r *Reader) Enabled() bool {
	return r.enabled.Load() && r.suspended.Load() == 0
}

// SwitchedOn reports the operator switch alone, ignoring suspensions.
func (r *Reader) SwitchedOn() bool {
	return r.enabled.Load()
}

// Suspended reports whether at least one suspension is open.
func (r *Reader) Suspended() bool {
	return r.suspended.Load() > 0
}

// Suspend turns caching off until the returned resume func is called.
// Suspensions nest: caching resumes when the last one ends. Calling resume
// more than once has no further effect.
func (r *Reader) Suspend() (resume func()) {
	r.suspended.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { r.suspended.Add(-1) })
	}
}

// Invalidate evicts every entry filed under any of tags.
func (r *Reader) Invalidate(ctx context.Context, tags ...string) int {
	if len(tags) == 0 {
		return 0
	}
	return r.cache.InvalidateTags(ctx, tags...)
}

// Invalidator returns Invalidate as a standalone hook for mutations.
func (r *Reader) Invalidator() Invalidator {
	return r.Invalidate
}

type wrapConfig struct {
	ttl time.Duration
}

// WrapOption configures a wrapped read.
type WrapOption func(*wrapConfig)

// WithTTL overrides the policy default TTL for one wrapped read.
func WithTTL(ttl time.Duration) WrapOption {
	return func(c *wrapConfig) {
		c.ttl = ttl
	}
}

// Wrap returns fetch with cache-aside semantics keyed by operation and the
// canonical form of its arguments. On a hit fetch is not called. On a miss
// fetch runs, its result is tagged with tags (which may be nil) and stored.
// Failures are returned unchanged and nothing is stored.
//
// If r is nil, its policy disables caching, or its kill switch is off, fetch
// is returned unmodified.
func Wrap[A, R any](r *Reader, operation string, fetch FetchFunc[A, R], tags TagFunc[A, R], opts ...WrapOption) FetchFunc[A, R] {
	if r == nil || !r.policy.ShouldCache() || !r.Enabled() {
		return fetch
	}

	var cfg wrapConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, args A) (R, error) {
		if !r.Enabled() {
			return fetch(ctx, args)
		}

		key, err := r.keyer.Key(operation, args)
		if err != nil {
			// Key generation failed - fetch without caching
			return fetch(ctx, args)
		}

		if cached, ok := r.cache.Get(ctx, key); ok {
			if result, ok := asResult[R](cached); ok {
				return result, nil
			}
		}

		if !r.policy.Coalesce {
			return load(ctx, r.cache, key, cfg.ttl, args, fetch, tags)
		}

		// The shared fetch serves every joined caller, so the leader's
		// cancellation must not end it.
		shared := context.WithoutCancel(ctx)
		v, err, _ := r.group.Do(key, func() (any, error) {
			return load(shared, r.cache, key, cfg.ttl, args, fetch, tags)
		})
		if err != nil {
			var zero R
			return zero, err
		}
		result, _ := asResult[R](v)
		return result, nil
	}
}

func load[A, R any](ctx context.Context, c Cache, key string, ttl time.Duration, args A, fetch FetchFunc[A, R], tags TagFunc[A, R]) (R, error) {
	result, err := fetch(ctx, args)
	if err != nil {
		// Don't cache errors
		return result, err
	}

	var tagList []string
	if tags != nil {
		tagList = tags(args, result)
	}
	c.Set(ctx, key, result, ttl, tagList...)
	return result, nil
}

func asResult[R any](v any) (R, bool) {
	if v == nil {
		var zero R
		return zero, true
	}
	result, ok := v.(R)
	return result, ok
}
