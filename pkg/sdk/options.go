package kmsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path        string
	busyTimeout time.Duration
	autoMigrate bool

	fields      []string
	maxPageSize int

	segmenter    Segmenter
	segmenterSet bool

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite sets the database file. Required.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithBusyTimeout sets how long SQLite waits on a locked database. Default: 5s.
func WithBusyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.busyTimeout = d
	})
}

// WithAutoMigrate controls schema migration on New. Default: enabled.
func WithAutoMigrate(enabled bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.autoMigrate = enabled
	})
}

// WithFields sets the searchable columns. Default: khmer_title, khmer_description.
func WithFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = fields
	})
}

// WithMaxPageSize caps the page size. Default: 100.
func WithMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPageSize = n
	})
}

// WithSegmenter sets the provider for the segmented stage. Default: the
// built-in syllable segmenter. Pass nil to disable the stage.
func WithSegmenter(s Segmenter) Option {
	return optionFunc(func(c *clientConfig) {
		c.segmenter = s
		c.segmenterSet = true
	})
}

// WithRedisCache caches match sets in Redis for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger sets the logger used by the search pipeline for stage and
// segmentation diagnostics. Default: no-op.
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
