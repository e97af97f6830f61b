package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "kmsearch.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := sqlite.MigrateUp(ctx, store.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(store.DB())
}

func loadBundle(t *testing.T, name string) *Bundle {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	b, err := ParseBundle(data)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return b
}
