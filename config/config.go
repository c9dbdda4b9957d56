package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/invoicekit/auth"
	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/observe"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceName is reported to telemetry backends.
const ServiceName = "invoicekit"

// Errors returned by Validate.
var (
	ErrInvalidEnv       = errors.New("config: invalid environment")
	ErrInvalidNamespace = errors.New("config: invalid gid namespace")
	ErrInvalidCache     = errors.New("config: invalid cache settings")
	ErrMissingDBPath    = errors.New("config: database path is required")
	ErrMissingAdminAddr = errors.New("config: admin address is required")
	ErrWeakJWTSecret    = errors.New("config: admin jwt secret must be at least 32 bytes")
)

// Config is the process configuration.
type Config struct {
	Env          string `env:"INVOICEKIT_ENV"           envDefault:"development"`
	GIDNamespace string `env:"INVOICEKIT_GID_NAMESPACE" envDefault:"gid://invoicekit"`

	CacheEnabled    bool          `env:"INVOICEKIT_CACHE_ENABLED"     envDefault:"true"`
	CacheMaxSize    int           `env:"INVOICEKIT_CACHE_MAX_SIZE"    envDefault:"1000"`
	CacheDefaultTTL time.Duration `env:"INVOICEKIT_CACHE_DEFAULT_TTL" envDefault:"5m"`
	CacheMaxTTL     time.Duration `env:"INVOICEKIT_CACHE_MAX_TTL"     envDefault:"1h"`
	CacheCoalesce   bool          `env:"INVOICEKIT_CACHE_COALESCE"    envDefault:"false"`

	DBPath string `env:"INVOICEKIT_DB_PATH" envDefault:"invoicekit.db"`

	AdminAddr      string `env:"INVOICEKIT_ADMIN_ADDR"       envDefault:"127.0.0.1:8089"`
	AdminJWTSecret string `env:"INVOICEKIT_ADMIN_JWT_SECRET"`
	AdminJWTIssuer string `env:"INVOICEKIT_ADMIN_JWT_ISSUER"`

	LogLevel        string  `env:"INVOICEKIT_LOG_LEVEL"        envDefault:"info"`
	TracingExporter string  `env:"INVOICEKIT_TRACING_EXPORTER" envDefault:"none"`
	MetricsExporter string  `env:"INVOICEKIT_METRICS_EXPORTER" envDefault:"none"`
	TraceSamplePct  float64 `env:"INVOICEKIT_TRACE_SAMPLE_PCT" envDefault:"1.0"`
}

// Load parses the environment, expands ${VAR} references in DBPath and
// AdminJWTSecret, and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	for _, field := range []*string{&cfg.DBPath, &cfg.AdminJWTSecret} {
		expanded, err := ExpandEnvStrict(*field)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		*field = expanded
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent values.
func (c Config) Validate() error {
	if !slices.Contains([]string{EnvDevelopment, EnvStaging, EnvProduction}, c.Env) {
		return fmt.Errorf("%w: %q", ErrInvalidEnv, c.Env)
	}
	if _, err := gid.New(c.GIDNamespace); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNamespace, err)
	}
	if c.CacheMaxSize <= 0 {
		return fmt.Errorf("%w: max size %d", ErrInvalidCache, c.CacheMaxSize)
	}
	if c.CacheDefaultTTL < 0 || c.CacheMaxTTL < 0 {
		return fmt.Errorf("%w: negative ttl", ErrInvalidCache)
	}
	if c.CacheMaxTTL > 0 && c.CacheDefaultTTL > c.CacheMaxTTL {
		return fmt.Errorf("%w: default ttl %s exceeds max ttl %s", ErrInvalidCache, c.CacheDefaultTTL, c.CacheMaxTTL)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return ErrMissingDBPath
	}
	if strings.TrimSpace(c.AdminAddr) == "" {
		return ErrMissingAdminAddr
	}
	if c.AdminJWTSecret != "" && len(c.AdminJWTSecret) < 32 {
		return ErrWeakJWTSecret
	}

	obs := c.Observe()
	return obs.Validate()
}

// IsProduction reports whether the administrative cache routes must stay off.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// JWT returns the admin token settings.
func (c Config) JWT() auth.JWTConfig {
	return auth.JWTConfig{
		Secret: []byte(c.AdminJWTSecret),
		Issuer: c.AdminJWTIssuer,
	}
}

// CachePolicy returns the store policy described by the cache variables.
func (c Config) CachePolicy() cache.Policy {
	return cache.Policy{
		DefaultTTL: c.CacheDefaultTTL,
		MaxTTL:     c.CacheMaxTTL,
		MaxSize:    c.CacheMaxSize,
		Coalesce:   c.CacheCoalesce,
	}
}

// Observe returns the telemetry configuration. An exporter of "none" or ""
// disables that signal.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   exporterEnabled(c.TracingExporter),
			Exporter:  c.TracingExporter,
			SamplePct: c.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  exporterEnabled(c.MetricsExporter),
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

func exporterEnabled(name string) bool {
	return name != "" && name != "none"
}
