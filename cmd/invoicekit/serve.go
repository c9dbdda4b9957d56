package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/invoicekit/admin"
	"github.com/jonwraymond/invoicekit/auth"
	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/config"
	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/health"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/observe"
	"github.com/jonwraymond/invoicekit/resolver"
	"github.com/jonwraymond/invoicekit/storage"
	"github.com/jonwraymond/invoicekit/storage/sqlite"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin server until interrupted",
		Long: `Open the store, build the read cache and resolver, and serve the
health, metrics and admin routes on INVOICEKIT_ADMIN_ADDR.

All settings come from INVOICEKIT_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			return errors.Join(a.server.ListenAndServe(ctx), a.Close(context.WithoutCancel(ctx)))
		},
	}
}

// app is the fully wired process.
type app struct {
	cfg      config.Config
	observer observe.Observer
	logger   observe.Logger
	store    *sqlite.Store
	cache    *cache.Store
	reader   *cache.Reader
	resolver *resolver.Resolver
	health   *health.Aggregator
	handler  http.Handler
	server   *admin.Server
	metrics  metric.Registration
}

func newApp(ctx context.Context, cfg config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close(ctx))
		}
	}()

	a.observer, err = observe.NewObserver(ctx, cfg.Observe())
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	a.logger = a.observer.Logger()

	codec, err := gid.New(cfg.GIDNamespace)
	if err != nil {
		return nil, err
	}

	hook, err := observe.NewCollisionHook(a.observer.Meter(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("collision hook: %w", err)
	}
	a.store, err = sqlite.Open(ctx, cfg.DBPath, sqlite.WithCollisionHook(hook))
	if err != nil {
		return nil, err
	}

	policy := cfg.CachePolicy()
	a.cache = cache.NewStore(policy)
	a.reader = cache.NewReader(a.cache, nil, policy)
	a.metrics, err = observe.RegisterCacheMetrics(a.observer.Meter(), a.cache)
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(a.observer)
	if err != nil {
		return nil, fmt.Errorf("middleware: %w", err)
	}
	a.resolver = resolver.New(a.store, lookup.NewBuilder(codec, storage.IntegerTypes...),
		resolver.WithReader(a.reader),
		resolver.WithMiddleware(mw),
		resolver.WithLogger(a.logger),
	)
	// Reads are wrapped with the switch on so the admin route can turn
	// caching on later; a disabled cache bypasses at call time.
	a.reader.SetEnabled(cfg.CacheEnabled)

	a.health = health.NewAggregator()
	a.health.Register(
		health.NewPingChecker("store", a.store),
		health.NewCacheChecker(a.cache, health.CacheCheckerConfig{}),
	)

	opts := admin.Options{
		Production: cfg.IsProduction(),
		Cache:      a.cache,
		Reader:     a.reader,
		Codec:      codec,
		Health:     a.health,
		Records:    a.resolver,
		Logger:     a.logger,
	}
	if cfg.AdminJWTSecret != "" {
		opts.Authenticator = auth.NewJWTAuthenticator(cfg.JWT())
	} else if !cfg.IsProduction() {
		a.logger.Warn(ctx, "admin routes are unauthenticated; set INVOICEKIT_ADMIN_JWT_SECRET")
	}
	a.handler = admin.NewRouter(opts)
	a.server = admin.NewServer(cfg.AdminAddr, a.handler, a.logger)

	a.logger.Info(ctx, "invoicekit ready",
		observe.Field{Key: "env", Value: cfg.Env},
		observe.Field{Key: "db", Value: cfg.DBPath},
		observe.Field{Key: "cache_enabled", Value: cfg.CacheEnabled},
	)
	return a, nil
}

// Close releases everything newApp acquired, in reverse order.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		errs = append(errs, a.metrics.Unregister())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.observer != nil {
		errs = append(errs, a.observer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
