// Package health provides readiness checks for invoicekit.
//
// A Checker reports a Status: Healthy, Degraded, or Unhealthy. The package
// ships a PingChecker for the backing store and a CacheChecker that flags a
// thrashing read cache.
//
// # Basic Usage
//
//	storeCheck := health.NewPingChecker("store", db)
//	cacheCheck := health.NewCacheChecker(cacheStore, health.CacheCheckerConfig{
//	    FullThreshold: 0.95,
//	    MinHitRate:    0.5,
//	})
//
// # Aggregating
//
// An Aggregator runs its checkers concurrently and reports the worst status:
//
//	agg := health.NewAggregator(health.WithTimeout(2 * time.Second))
//	agg.Register(storeCheck, cacheCheck)
//
//	report := agg.CheckAll(ctx)
//
// # HTTP Endpoints
//
// RegisterHandlers mounts /healthz (liveness), /readyz (readiness) and
// /health (detailed JSON) on any Mux, including chi routers.
package health
