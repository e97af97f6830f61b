package matchcache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/db"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/match"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
)

type mockMatcher struct {
	set   match.Set
	err   error
	calls int
}

func (m *mockMatcher) Run(_ context.Context, _ request.Request) (match.Set, error) {
	m.calls++
	return m.set, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	incrFn func(ctx context.Context, key string) (int64, error)
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	return 1, nil
}

// memStore is a map-backed store with Redis INCR semantics.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func newTestCache(t *testing.T, inner *mockMatcher) (*CachedMatcher, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_match_cache_total"}, []string{"result"})
	return New(inner, ms, time.Minute, counter, zap.NewNop()), ms, counter
}

func mustRequest(t *testing.T, text string, page, pageSize int) request.Request {
	t.Helper()
	r, err := request.New(text, page, pageSize, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}
