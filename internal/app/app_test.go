package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/config"
	"github.com/kailas-cloud/kmsearch/internal/db"
	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
	resourcerepo "github.com/kailas-cloud/kmsearch/internal/repository/resource"
	"github.com/kailas-cloud/kmsearch/internal/segment"
	"github.com/kailas-cloud/kmsearch/internal/segment/cluster"
	openaiseg "github.com/kailas-cloud/kmsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/kmsearch/internal/usecase/health"
)

func newTestApp(t *testing.T, seg segment.Segmenter) *App {
	t.Helper()
	a, err := New(context.Background(), Options{
		Database:    sqlite.Config{Path: filepath.Join(t.TempDir(), "kmsearch.db")},
		AutoMigrate: true,
		Segmenter:   seg,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func seed(t *testing.T, a *App, resources ...resourcerepo.ResourceEntry) {
	t.Helper()
	if _, err := a.Resources.Import(context.Background(), &resourcerepo.Bundle{Resources: resources}); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func published() *time.Time {
	ts := time.Date(2025, 4, 1, 8, 37, 36, 0, time.UTC)
	return &ts
}

func TestSearch_PaginatesInIDOrder(t *testing.T) {
	a := newTestApp(t, cluster.New())
	var entries []resourcerepo.ResourceEntry
	for i := 1; i <= 40; i++ {
		entries = append(entries, resourcerepo.ResourceEntry{
			DocumentID:  fmt.Sprintf("book-%02d", i),
			KhmerTitle:  fmt.Sprintf("សៀវភៅ %d", i),
			PublishedAt: published(),
		})
	}
	entries = append(entries, resourcerepo.ResourceEntry{DocumentID: "book-draft", KhmerTitle: "សៀវភៅ"})
	seed(t, a, entries...)

	res, err := a.Search.Search(context.Background(), "សៀវភៅ", 2, 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	p := res.Pagination
	if p.Page != 2 || p.PageSize != 25 || p.PageCount != 2 || p.Total != 40 {
		t.Errorf("pagination = %+v", p)
	}
	if len(res.Documents) != 15 {
		t.Fatalf("documents = %d, want 15", len(res.Documents))
	}
	if res.Documents[0].DocumentID != "book-26" || res.Documents[14].DocumentID != "book-40" {
		t.Errorf("page 2 spans %s..%s", res.Documents[0].DocumentID, res.Documents[14].DocumentID)
	}
}

func TestSearch_WordSplitOnZeroWidthSpace(t *testing.T) {
	a := newTestApp(t, segment.Unavailable{})
	seed(t, a, resourcerepo.ResourceEntry{
		DocumentID:       "school",
		KhmerTitle:       "សាលា",
		KhmerDescription: "រៀន",
		PublishedAt:      published(),
	})

	res, err := a.Search.Search(context.Background(), "សាលា\u200bរៀន", 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Pagination.Total != 1 || len(res.Documents) != 1 {
		t.Fatalf("result = %+v", res.Pagination)
	}
	if res.Documents[0].DocumentID != "school" {
		t.Errorf("document = %s", res.Documents[0].DocumentID)
	}
}

func TestSearch_SegmentationOnly(t *testing.T) {
	a := newTestApp(t, cluster.New())
	seed(t, a,
		resourcerepo.ResourceEntry{
			DocumentID:       "school",
			KhmerTitle:       "សាលា",
			KhmerDescription: "រៀន",
			PublishedAt:      published(),
		},
		resourcerepo.ResourceEntry{
			DocumentID:  "other",
			KhmerTitle:  "ភាសា",
			PublishedAt: published(),
		},
	)

	res, err := a.Search.Search(context.Background(), "សាលារៀន", 1, 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Pagination.Total != 1 || len(res.Documents) != 1 || res.Documents[0].DocumentID != "school" {
		t.Fatalf("result = %+v", res)
	}
}

func TestSearch_SegmenterDisabled(t *testing.T) {
	a := newTestApp(t, segment.Unavailable{})
	seed(t, a, resourcerepo.ResourceEntry{
		DocumentID:       "school",
		KhmerTitle:       "សាលា",
		KhmerDescription: "រៀន",
		PublishedAt:      published(),
	})

	res, err := a.Search.Search(context.Background(), "សាលារៀន", 1, 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Pagination.Total != 0 || len(res.Documents) != 0 {
		t.Errorf("result = %+v, want empty", res.Pagination)
	}
}

func TestSearch_StorageFailure(t *testing.T) {
	a := newTestApp(t, nil)
	if _, err := a.Store.DB().Exec(`DROP TABLE resources_categories_lnk`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := a.Store.DB().Exec(`DROP TABLE resource_chapters`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := a.Store.DB().Exec(`DROP TABLE resources`); err != nil {
		t.Fatalf("drop: %v", err)
	}

	_, err := a.Search.Search(context.Background(), "សាលា", 1, 25)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, cluster.New())
	r := a.Health.Check(context.Background())
	if r.Status != healthuc.Healthy {
		t.Errorf("status = %s", r.Status)
	}
	if _, ok := r.Checks[healthuc.ComponentSegmenter]; ok {
		t.Error("cluster segmenter has no health check")
	}
}

func TestNewSegmenter(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"", cluster.Name},
		{"cluster", cluster.Name},
		{"openai", openaiseg.Name},
		{"none", segment.ProviderNone},
	}
	for _, tt := range tests {
		seg, err := NewSegmenter(&config.SegmenterConfig{Provider: tt.provider}, zap.NewNop())
		if err != nil {
			t.Fatalf("%q: %v", tt.provider, err)
		}
		if seg.Name() != tt.want {
			t.Errorf("%q: name = %s, want %s", tt.provider, seg.Name(), tt.want)
		}
	}

	if _, err := NewSegmenter(&config.SegmenterConfig{Provider: "icu"}, zap.NewNop()); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Config{
		Database: config.DatabaseConfig{Path: "/tmp/x.db", BusyTimeoutMs: 250, AutoMigrate: true},
		Search:   config.SearchConfig{MaxPageSize: 50, Fields: []string{"khmer_title"}},
		Cache:    config.CacheConfig{Enabled: true, Addrs: []string{"localhost:6379"}, TTLSec: 30},
	}
	opts, err := OptionsFromConfig(&cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Database.BusyTimeout != 250*time.Millisecond || !opts.AutoMigrate {
		t.Errorf("database = %+v", opts.Database)
	}
	if opts.MaxPageSize != 50 || len(opts.Search.Fields) != 1 {
		t.Errorf("search = %+v / %d", opts.Search, opts.MaxPageSize)
	}
	if opts.Cache == nil || opts.Cache.TTL != 30*time.Second || opts.Cache.Redis.Addrs[0] != "localhost:6379" {
		t.Errorf("cache = %+v", opts.Cache)
	}
	if opts.Segmenter == nil || opts.Segmenter.Name() != cluster.Name {
		t.Errorf("segmenter = %v", opts.Segmenter)
	}
}

// memCache is an in-process db.CacheStore with Redis GET/SET/INCR semantics.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) Close() {}
func (m *memCache) WaitForReady(context.Context, time.Duration) error { return nil }

func TestImport_InvalidatesMatchCache(t *testing.T) {
	a, err := New(context.Background(), Options{
		Database:    sqlite.Config{Path: filepath.Join(t.TempDir(), "kmsearch.db")},
		AutoMigrate: true,
		Segmenter:   segment.Unavailable{},
		Cache:       &CacheOptions{Store: newMemCache(), TTL: time.Hour},
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := a.Search.Search(ctx, "សាលា", 1, 25)
		if err != nil {
			t.Fatalf("search before import: %v", err)
		}
		if res.Pagination.Total != 0 {
			t.Fatalf("total before import = %d, want 0", res.Pagination.Total)
		}
	}

	_, err = a.Import(ctx, &resourcerepo.Bundle{Resources: []resourcerepo.ResourceEntry{{
		DocumentID:  "school",
		KhmerTitle:  "សាលា",
		PublishedAt: published(),
	}}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	res, err := a.Search.Search(ctx, "សាលា", 1, 25)
	if err != nil {
		t.Fatalf("search after import: %v", err)
	}
	if res.Pagination.Total != 1 || len(res.Documents) != 1 || res.Documents[0].DocumentID != "school" {
		t.Errorf("after import: total = %d, docs = %d", res.Pagination.Total, len(res.Documents))
	}
}
