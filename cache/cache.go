package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidKey is returned by a Keyer for an empty operation name.
var ErrInvalidKey = errors.New("cache: key is invalid")

// Cache is the interface of the read cache.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; each call is atomic.
// - Context: methods must not block; ctx is accepted for tracing only.
// - Errors: cache operations never fail. Get returns (nil, false) on miss.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value under key and files it under every tag.
	// A ttl <= 0 uses the policy default.
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string)

	// Delete removes a cached value. Idempotent.
	Delete(ctx context.Context, key string)

	// InvalidateTag removes every entry filed under tag and returns how many were removed.
	InvalidateTag(ctx context.Context, tag string) int

	// InvalidateTags invalidates each tag in turn and returns the total removed.
	InvalidateTags(ctx context.Context, tags ...string) int

	// Clear removes every entry and tag.
	Clear(ctx context.Context)

	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Sets          uint64  `json:"sets"`
	Evictions     uint64  `json:"evictions"`
	Invalidations uint64  `json:"invalidations"`
	HitRate       float64 `json:"hitRate"`
	Size          int     `json:"size"`
	MaxSize       int     `json:"maxSize"`
	TagCount      int     `json:"tagCount"`
}
