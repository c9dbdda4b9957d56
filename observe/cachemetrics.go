package observe

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/invoicekit/cache"
)

// StatsSource exposes cache statistics. *cache.Store implements it.
type StatsSource interface {
	Stats() cache.Stats
}

// RegisterCacheMetrics exports src's statistics as observable instruments.
// Counters are cumulative; size and tag count are gauges. Call Unregister on
// the returned registration to stop reporting.
func RegisterCacheMetrics(meter metric.Meter, src StatsSource) (metric.Registration, error) {
	if src == nil {
		return nil, ErrNilStatsSource
	}

	counter := func(name, desc string) (metric.Int64ObservableCounter, error) {
		return meter.Int64ObservableCounter(name,
			metric.WithDescription(desc),
			metric.WithUnit("{entry}"),
		)
	}

	hits, err := counter("cache.hits", "Cache lookups that returned a live entry")
	if err != nil {
		return nil, err
	}
	misses, err := counter("cache.misses", "Cache lookups that found nothing or an expired entry")
	if err != nil {
		return nil, err
	}
	sets, err := counter("cache.sets", "Entries written to the cache")
	if err != nil {
		return nil, err
	}
	evictions, err := counter("cache.evictions", "Entries evicted to make room")
	if err != nil {
		return nil, err
	}
	invalidations, err := counter("cache.invalidations", "Entries removed by tag invalidation")
	if err != nil {
		return nil, err
	}
	size, err := meter.Int64ObservableGauge("cache.size",
		metric.WithDescription("Entries currently held, including expired ones not yet looked up"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	tags, err := meter.Int64ObservableGauge("cache.tags",
		metric.WithDescription("Distinct tags in the tag index"),
		metric.WithUnit("{tag}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := src.Stats()
		o.ObserveInt64(hits, int64(s.Hits))
		o.ObserveInt64(misses, int64(s.Misses))
		o.ObserveInt64(sets, int64(s.Sets))
		o.ObserveInt64(evictions, int64(s.Evictions))
		o.ObserveInt64(invalidations, int64(s.Invalidations))
		o.ObserveInt64(size, int64(s.Size))
		o.ObserveInt64(tags, int64(s.TagCount))
		return nil
	}, hits, misses, sets, evictions, invalidations, size, tags)
}
