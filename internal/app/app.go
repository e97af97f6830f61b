// Package app assembles the search stack: SQLite store, repositories,
// segmentation provider, optional match cache and the use case services.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/config"
	"github.com/kailas-cloud/kmsearch/internal/db"
	dbredis "github.com/kailas-cloud/kmsearch/internal/db/redis"
	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kmsearch/internal/metrics"
	"github.com/kailas-cloud/kmsearch/internal/repository/matchcache"
	resourcerepo "github.com/kailas-cloud/kmsearch/internal/repository/resource"
	searchrepo "github.com/kailas-cloud/kmsearch/internal/repository/search"
	"github.com/kailas-cloud/kmsearch/internal/segment"
	"github.com/kailas-cloud/kmsearch/internal/segment/cluster"
	openaiseg "github.com/kailas-cloud/kmsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/kmsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kmsearch/internal/usecase/search"
)

// CacheOptions enables the Redis match cache.
type CacheOptions struct {
	Redis dbredis.Config
	// Store replaces the Redis connection when set. The App closes it.
	Store            db.CacheStore
	TTL              time.Duration
	ReadinessTimeout time.Duration
}

// Options configures New.
type Options struct {
	Database    sqlite.Config
	AutoMigrate bool
	Search      searchrepo.Options
	MaxPageSize int
	// Segmenter overrides the provider. Nil means segmentation is disabled.
	Segmenter segment.Segmenter
	// Cache is nil when the match cache is disabled.
	Cache  *CacheOptions
	Logger *zap.Logger
}

// App holds the wired services and owns the underlying connections.
type App struct {
	Store     *sqlite.Store
	Cache     db.CacheStore
	Resources *resourcerepo.Repo
	Search    *searchuc.Service
	Health    *healthuc.Service
	Segmenter segment.Segmenter

	matchCache *matchcache.CachedMatcher
	logger     *zap.Logger
}

// New opens storage and wires the services.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.RegisterSearchMetrics()

	store, err := sqlite.Open(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.AutoMigrate {
		applied, err := sqlite.MigrateUp(ctx, store.DB())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if applied > 0 {
			logger.Info("Applied migrations", zap.Int("count", applied), zap.Int("version", sqlite.SchemaVersion()))
		}
	}

	matcher, err := searchrepo.New(store.DB(), opts.Search)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("search repository: %w", err)
	}
	resources := resourcerepo.New(store.DB())

	var seg segment.Segmenter
	if opts.Segmenter != nil {
		seg = segment.Instrument(opts.Segmenter)
	}

	a := &App{Store: store, Resources: resources, Segmenter: seg, logger: logger}

	var runner searchuc.Runner = searchuc.NewCascade(matcher, seg, logger)
	if opts.Cache != nil {
		cache, err := openCache(ctx, opts.Cache)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = cache
		a.matchCache = matchcache.New(runner, cache, opts.Cache.TTL, metrics.MatchCacheTotal, logger)
		runner = a.matchCache
	}

	a.Search = searchuc.New(runner, resources,
		searchuc.WithMaxPageSize(opts.MaxPageSize),
		searchuc.WithLogger(logger))
	a.Health = healthuc.New(store, a.healthOptions(opts.Segmenter)...)
	return a, nil
}

// Import writes a bundle and then invalidates the match cache. A failed
// invalidation is logged; the committed import is still reported.
func (a *App) Import(ctx context.Context, b *resourcerepo.Bundle) (resourcerepo.ImportStats, error) {
	stats, err := a.Resources.Import(ctx, b)
	if err != nil {
		return resourcerepo.ImportStats{}, err
	}
	if a.matchCache != nil {
		if err := a.matchCache.Invalidate(ctx); err != nil {
			a.logger.Error("Match cache not invalidated after import", zap.Error(err))
		}
	}
	return stats, nil
}

func openCache(ctx context.Context, opts *CacheOptions) (db.CacheStore, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}
	cache, err := dbredis.NewStore(opts.Redis)
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	timeout := opts.ReadinessTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := cache.WaitForReady(ctx, timeout); err != nil {
		cache.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return cache, nil
}

func (a *App) healthOptions(provider segment.Segmenter) []healthuc.Option {
	var opts []healthuc.Option
	if a.Cache != nil {
		opts = append(opts, healthuc.WithChecker(healthuc.ComponentCache, healthuc.CheckerFunc(a.Cache.Ping)))
	}
	if hc, ok := provider.(healthuc.Checker); ok {
		opts = append(opts, healthuc.WithChecker(healthuc.ComponentSegmenter, hc))
	}
	return opts
}

// Close releases the cache and database connections.
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.logger.Warn("Closing database", zap.Error(err))
		}
	}
}

// OptionsFromConfig maps file configuration to Options.
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) (Options, error) {
	opts := Options{
		Database: sqlite.Config{
			Path:         cfg.Database.Path,
			BusyTimeout:  cfg.Database.BusyTimeout(),
			MaxOpenConns: cfg.Database.MaxOpenConns,
		},
		AutoMigrate: cfg.Database.AutoMigrate,
		Search: searchrepo.Options{
			Fields: cfg.Search.Fields,
		},
		MaxPageSize: cfg.Search.MaxPageSize,
		Logger:      logger,
	}

	seg, err := NewSegmenter(&cfg.Segmenter, logger)
	if err != nil {
		return Options{}, err
	}
	opts.Segmenter = seg

	if cfg.Cache.Enabled {
		opts.Cache = &CacheOptions{
			Redis: dbredis.Config{
				Addrs:    cfg.Cache.Addrs,
				Username: cfg.Cache.Username,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
			},
			TTL:              cfg.Cache.TTL(),
			ReadinessTimeout: time.Duration(cfg.Cache.ReadinessTimeout) * time.Second,
		}
	}
	return opts, nil
}

// ErrUnknownProvider is returned for an unsupported segmenter provider name.
var ErrUnknownProvider = errors.New("unknown segmenter provider")

// NewSegmenter builds the configured segmentation provider. The "none"
// provider returns segment.Unavailable.
func NewSegmenter(cfg *config.SegmenterConfig, logger *zap.Logger) (segment.Segmenter, error) {
	switch cfg.Provider {
	case segment.ProviderCluster, "":
		return cluster.New(), nil
	case segment.ProviderOpenAI:
		return openaiseg.NewSegmenter(&openaiseg.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout(),
			Logger:  logger,
		}), nil
	case segment.ProviderNone:
		return segment.Unavailable{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
