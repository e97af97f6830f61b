package matchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/db"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/match"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
)

// KeyPrefix namespaces cache entries.
const KeyPrefix = "kmsearch:match:"

// GenerationKey holds the counter that Invalidate bumps. Entries are keyed
// under the current generation, so a bump orphans every older entry until
// its TTL expires.
const GenerationKey = KeyPrefix + "gen"

// store is the consumer interface for the match cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// matcher is the cascade being cached.
type matcher interface {
	Run(ctx context.Context, req request.Request) (match.Set, error)
}

// CachedMatcher caches cascade outcomes per (query, page, pageSize).
type CachedMatcher struct {
	inner      matcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner matcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedMatcher {
	return &CachedMatcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Run returns a cached match set or runs the cascade. Storage errors from the
// cascade are returned uncached; cache errors degrade to a miss. When the
// generation cannot be read the result is not cached either.
func (c *CachedMatcher) Run(ctx context.Context, req request.Request) (match.Set, error) {
	gen, genOK := c.generation(ctx)
	key := CacheKey(gen, req)

	if genOK {
		if set, ok := c.getFromCache(ctx, key); ok {
			c.incCache("hit")
			return set, nil
		}
	}

	c.incCache("miss")

	set, err := c.inner.Run(ctx, req)
	if err != nil {
		return match.Set{}, fmt.Errorf("run cascade: %w", err)
	}

	if genOK {
		c.putToCache(ctx, key, set)
	}
	return set, nil
}

// Invalidate drops every cached match set by advancing the generation.
// Call it after the searchable data changes.
func (c *CachedMatcher) Invalidate(ctx context.Context) error {
	gen, err := c.store.Incr(ctx, GenerationKey)
	if err != nil {
		return fmt.Errorf("advance cache generation: %w", err)
	}
	c.logger.Debug("Match cache invalidated", zap.Int64("generation", gen))
	return nil
}

func (c *CachedMatcher) generation(ctx context.Context) (string, bool) {
	data, err := c.store.Get(ctx, GenerationKey)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return "0", true
	case err != nil:
		c.logger.Warn("Failed to read match cache generation", zap.Error(err))
		return "", false
	case len(data) == 0:
		return "0", true
	}
	return string(data), true
}

func (c *CachedMatcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// CacheKey hashes the raw query text with the page window under generation
// gen. The raw text is used because separator positions change which stage
// matches.
func CacheKey(gen string, req request.Request) string {
	h := sha256.New()
	h.Write([]byte(req.Text()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(req.Page())))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(req.PageSize())))
	return KeyPrefix + gen + ":" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedMatcher) getFromCache(ctx context.Context, key string) (match.Set, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached match set", zap.String("key", key), zap.Error(err))
		}
		return match.Set{}, false
	}
	if len(data) == 0 {
		return match.Set{}, false
	}

	var set match.Set
	if err := json.Unmarshal(data, &set); err != nil || !set.Stage.IsValid() {
		c.logger.Warn("Failed to parse cached match set", zap.String("key", key), zap.Error(err))
		return match.Set{}, false
	}
	return set, true
}

func (c *CachedMatcher) putToCache(ctx context.Context, key string, set match.Set) {
	data, err := json.Marshal(set)
	if err != nil {
		c.logger.Warn("Failed to encode match set", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache match set", zap.String("key", key), zap.Error(err))
	}
}
