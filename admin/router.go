package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/invoicekit/auth"
	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/health"
	"github.com/jonwraymond/invoicekit/observe"
)

// CacheControl is the part of the read cache the admin routes drive.
// *cache.Store implements it.
type CacheControl interface {
	Stats() cache.Stats
	Clear(ctx context.Context)
	InvalidateTags(ctx context.Context, tags ...string) int
}

// Options configures the router.
type Options struct {
	// Production hides the /admin routes.
	Production bool

	Cache   CacheControl
	Reader  *cache.Reader
	Codec   *gid.Codec
	Health  *health.Aggregator
	Records Records

	// Metrics serves /metrics. Defaults to the Prometheus default registry.
	Metrics http.Handler

	// Authenticator guards /admin. Nil leaves the routes open.
	Authenticator auth.Authenticator

	Logger observe.Logger
}

// NewRouter builds the admin HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = observe.NopLogger()
	}
	if opts.Health == nil {
		opts.Health = health.NewAggregator()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	health.RegisterHandlers(router, opts.Health)
	router.Method(http.MethodGet, "/metrics", opts.Metrics)

	if opts.Production {
		return router
	}

	h := &handlers{
		cache:   opts.Cache,
		reader:  opts.Reader,
		codec:   opts.Codec,
		records: opts.Records,
		logger:  opts.Logger,
	}
	router.Route("/admin", func(r chi.Router) {
		if opts.Authenticator != nil {
			r.Use(auth.Authenticate(opts.Authenticator))
			r.Use(auth.RequireRole(auth.RoleAdmin))
		}

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", h.cacheStats)
			r.Post("/clear", h.cacheClear)
			r.Post("/invalidate", h.cacheInvalidate)
			r.Put("/enabled", h.cacheEnabled)
		})
		r.Get("/gid/*", h.decodeGID)
		r.Get("/records/{entity}/*", h.getRecord)
	})
	return router
}
