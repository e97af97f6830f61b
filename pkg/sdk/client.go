package kmsearch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/app"
	dbredis "github.com/kailas-cloud/kmsearch/internal/db/redis"
	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/result"
	resourcerepo "github.com/kailas-cloud/kmsearch/internal/repository/resource"
	searchrepo "github.com/kailas-cloud/kmsearch/internal/repository/search"
	"github.com/kailas-cloud/kmsearch/internal/segment"
	"github.com/kailas-cloud/kmsearch/internal/segment/cluster"
)

// Internal interfaces, swapped in tests.
type searchUseCase interface {
	Search(ctx context.Context, text string, page, pageSize int) (result.Result, error)
}

type importUseCase interface {
	Import(ctx context.Context, b *resourcerepo.Bundle) (resourcerepo.ImportStats, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the kmsearch SDK entry point.
type Client struct {
	app       *app.App
	store     pinger
	searchSvc searchUseCase
	importer  importUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the database, applies migrations unless disabled and wires the
// search pipeline. The provided context bounds the initial connection checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{autoMigrate: true}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("kmsearch: database path required (use WithSQLite)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, appOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("kmsearch: %w", err)
	}

	return &Client{
		app:       a,
		store:     a.Store,
		searchSvc: a.Search,
		importer:  a,
		healthSvc: a.Health,
		obs:       obs,
	}, nil
}

func appOptions(cfg *clientConfig) app.Options {
	opts := app.Options{
		Database: sqlite.Config{
			Path:        cfg.path,
			BusyTimeout: cfg.busyTimeout,
		},
		AutoMigrate: cfg.autoMigrate,
		Search:      searchrepo.Options{Fields: cfg.fields},
		MaxPageSize: cfg.maxPageSize,
		Logger:      cfg.zapLogger,
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	switch {
	case !cfg.segmenterSet:
		opts.Segmenter = cluster.New()
	case cfg.segmenter != nil:
		opts.Segmenter = cfg.segmenter
	default:
		opts.Segmenter = segment.Unavailable{}
	}

	if len(cfg.cacheAddrs) > 0 {
		opts.Cache = &app.CacheOptions{
			Redis: dbredis.Config{
				Addrs:    cfg.cacheAddrs,
				Password: cfg.cachePassword,
			},
			TTL: cfg.cacheTTL,
		}
	}
	return opts
}

// Close releases all resources.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a Khmer search. Non-positive page and pageSize select the
// defaults (1 and 25). Blank text returns an empty page without querying.
// Storage failures match ErrSearchFailed.
func (c *Client) Search(ctx context.Context, text string, page, pageSize int) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	r, err := c.searchSvc.Search(ctx, text, page, pageSize)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	return Result{Documents: r.Documents, Pagination: r.Pagination}, nil
}

// Import loads a YAML bundle of users, files, categories and resources in one
// transaction. Malformed bundles match ErrInvalidBundle.
func (c *Client) Import(ctx context.Context, bundle []byte) (stats ImportStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("import", start, err) }()

	b, err := resourcerepo.ParseBundle(bundle)
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: %w", err)
	}
	stats, err = c.importer.Import(ctx, b)
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: %w", err)
	}
	return stats, nil
}

// ImportFile reads a bundle from disk and imports it.
func (c *Client) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: read %s: %w", path, err)
	}
	return c.Import(ctx, data)
}
