package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxSize bounds the number of entries held by a Store.
	// Values <= 0 use DefaultMaxSize.
	MaxSize int

	// Coalesce de-duplicates concurrent misses for the same key so that only
	// one fetch runs. It does not close the window in which an invalidation
	// can be overwritten by an in-flight fetch.
	Coalesce bool
}

// DefaultMaxSize is the entry bound used when Policy.MaxSize is unset.
const DefaultMaxSize = 1000

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour, MaxSize: 1000, Coalesce: false
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
		MaxSize:    DefaultMaxSize,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{
		DefaultTTL: 0,
		MaxTTL:     0,
		MaxSize:    DefaultMaxSize,
	}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	// Clamp to MaxTTL if set
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}

// EffectiveMaxSize returns MaxSize, or DefaultMaxSize when unset.
func (p Policy) EffectiveMaxSize() int {
	if p.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return p.MaxSize
}
