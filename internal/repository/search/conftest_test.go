package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
)

type seedRow struct {
	documentID       string
	khmerTitle       string
	khmerDescription string
	published        bool
}

func newTestRepo(t *testing.T, rows ...seedRow) *Repo {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "search.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := sqlite.MigrateUp(ctx, store.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, r := range rows {
		var published any
		if r.published {
			published = "2025-04-01T08:37:36Z"
		}
		_, err := store.DB().ExecContext(ctx,
			`INSERT INTO resources (document_id, khmer_title, khmer_description, published_at) VALUES (?, ?, ?, ?)`,
			r.documentID, r.khmerTitle, r.khmerDescription, published)
		if err != nil {
			t.Fatalf("seed %s: %v", r.documentID, err)
		}
	}

	repo, err := New(store.DB(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return repo
}

func numbered(prefix string, n int, title string) []seedRow {
	rows := make([]seedRow, n)
	for i := range rows {
		rows[i] = seedRow{documentID: fmt.Sprintf("%s-%02d", prefix, i+1), khmerTitle: title, published: true}
	}
	return rows
}

// failingQuerier fails every query.
type failingQuerier struct{}

var errBroken = errors.New("database is locked")

func (failingQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errBroken
}

func (failingQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (failingQuerier) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errBroken
}
