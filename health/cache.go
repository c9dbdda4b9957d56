package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/invoicekit/cache"
)

// CacheStatsSource exposes cache statistics. *cache.Store implements it.
type CacheStatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// FullThreshold is the fill ratio at which the cache counts as full.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	FullThreshold float64

	// MinHitRate is the hit rate below which a full cache is degraded.
	// Value should be between 0 and 1. Default: 0.5 (50%)
	MinHitRate float64

	// MinLookups is the number of lookups required before the hit rate is
	// judged. Default: 100
	MinLookups uint64
}

// CacheChecker reports the read cache as degraded when it is full and
// mostly missing, which means it is thrashing. A cache is never unhealthy:
// reads still reach the store.
type CacheChecker struct {
	source CacheStatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a new cache health checker.
func NewCacheChecker(source CacheStatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.FullThreshold <= 0 || config.FullThreshold > 1 {
		config.FullThreshold = 0.95
	}
	if config.MinHitRate <= 0 || config.MinHitRate >= 1 {
		config.MinHitRate = 0.5
	}
	if config.MinLookups == 0 {
		config.MinLookups = 100
	}

	return &CacheChecker{source: source, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check performs the cache health check.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats := c.source.Stats()

	var fill float64
	if stats.MaxSize > 0 {
		fill = float64(stats.Size) / float64(stats.MaxSize)
	}

	details := map[string]any{
		"size":          stats.Size,
		"max_size":      stats.MaxSize,
		"fill_percent":  fill * 100,
		"tags":          stats.TagCount,
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"hit_rate":      stats.HitRate,
		"evictions":     stats.Evictions,
		"invalidations": stats.Invalidations,
	}

	lookups := stats.Hits + stats.Misses
	if fill >= c.config.FullThreshold && lookups >= c.config.MinLookups && stats.HitRate < c.config.MinHitRate {
		return Degraded(
			fmt.Sprintf("cache thrashing: %.1f%% full, hit rate %.1f%%", fill*100, stats.HitRate*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("cache %.1f%% full, hit rate %.1f%%", fill*100, stats.HitRate*100),
	).WithDetails(details)
}
