package health

import (
	"context"
	"testing"

	"github.com/jonwraymond/invoicekit/cache"
)

type staticStats cache.Stats

func (s staticStats) Stats() cache.Stats { return cache.Stats(s) }

func TestNewCacheChecker_Defaults(t *testing.T) {
	checker := NewCacheChecker(staticStats{}, CacheCheckerConfig{FullThreshold: 1.5, MinHitRate: -1})

	if checker.config.FullThreshold != 0.95 {
		t.Errorf("FullThreshold = %v, want 0.95", checker.config.FullThreshold)
	}
	if checker.config.MinHitRate != 0.5 {
		t.Errorf("MinHitRate = %v, want 0.5", checker.config.MinHitRate)
	}
	if checker.config.MinLookups != 100 {
		t.Errorf("MinLookups = %v, want 100", checker.config.MinLookups)
	}
	if checker.Name() != "cache" {
		t.Errorf("Name() = %v, want 'cache'", checker.Name())
	}
}

func TestCacheChecker_Check(t *testing.T) {
	tests := []struct {
		name  string
		stats cache.Stats
		want  Status
	}{
		{
			name:  "empty",
			stats: cache.Stats{MaxSize: 100},
			want:  StatusHealthy,
		},
		{
			name:  "full with good hit rate",
			stats: cache.Stats{Size: 100, MaxSize: 100, Hits: 900, Misses: 100, HitRate: 0.9},
			want:  StatusHealthy,
		},
		{
			name:  "half full with poor hit rate",
			stats: cache.Stats{Size: 50, MaxSize: 100, Hits: 100, Misses: 900, HitRate: 0.1},
			want:  StatusHealthy,
		},
		{
			name:  "full with poor hit rate but few lookups",
			stats: cache.Stats{Size: 100, MaxSize: 100, Hits: 1, Misses: 9, HitRate: 0.1},
			want:  StatusHealthy,
		},
		{
			name:  "thrashing",
			stats: cache.Stats{Size: 100, MaxSize: 100, Hits: 100, Misses: 900, HitRate: 0.1},
			want:  StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCacheChecker(staticStats(tt.stats), CacheCheckerConfig{})
			result := checker.Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
			if result.Details["size"] != tt.stats.Size {
				t.Errorf("Details[size] = %v, want %d", result.Details["size"], tt.stats.Size)
			}
		})
	}
}

func TestCacheChecker_LiveStore(t *testing.T) {
	store := cache.NewStore(cache.DefaultPolicy())
	store.Set(context.Background(), "k", "v", 0, "t")

	result := NewCacheChecker(store, CacheCheckerConfig{}).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Details["tags"] != 1 {
		t.Errorf("Details[tags] = %v, want 1", result.Details["tags"])
	}
}

func TestCacheChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewCacheChecker(staticStats{}, CacheCheckerConfig{}).Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", result.Status)
	}
}
