package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRegisterNormalizeFunction_Idempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		if err := RegisterNormalizeFunction(); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestNormalizeFunction_SQL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"removes zero width spaces", "សាលា\u200bរៀន", "សាលារៀន"},
		{"no zero width spaces", "abc", "abc"},
		{"only zero width spaces", "\u200b\u200b", ""},
		{"null", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			err := s.DB().QueryRowContext(ctx, `SELECT normalize_khmer_search(?)`, tt.in).Scan(&got)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("got %v, want NULL", got)
				}
				return
			}
			if s, ok := got.(string); !ok || s != tt.want {
				t.Errorf("got %#v, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeFunction_LikeBothSides(t *testing.T) {
	s := openTestStore(t)
	var matched bool
	err := s.DB().QueryRowContext(context.Background(),
		`SELECT normalize_khmer_search(?) LIKE normalize_khmer_search(?)`,
		"សាលា\u200bរៀន", "%សាលារៀន%").Scan(&matched)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !matched {
		t.Error("expected stored value with zero width space to match joined query")
	}
}

func TestMigrateUpDown(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	applied, err := MigrateUp(ctx, s.DB())
	if err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if applied != len(Migrations()) {
		t.Errorf("applied = %d, want %d", applied, len(Migrations()))
	}

	again, err := MigrateUp(ctx, s.DB())
	if err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
	if again != 0 {
		t.Errorf("second MigrateUp applied %d, want 0", again)
	}

	v, err := CurrentVersion(ctx, s.DB())
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if v != SchemaVersion() {
		t.Errorf("version = %d, want %d", v, SchemaVersion())
	}

	if _, err := s.DB().ExecContext(ctx,
		`INSERT INTO resources (document_id, khmer_title) VALUES ('r1', 'សាលា')`); err != nil {
		t.Fatalf("insert after migrate: %v", err)
	}

	reverted, err := MigrateDown(ctx, s.DB(), 1)
	if err != nil {
		t.Fatalf("MigrateDown(1): %v", err)
	}
	if reverted != 1 {
		t.Errorf("reverted = %d, want 1", reverted)
	}
	if v, _ := CurrentVersion(ctx, s.DB()); v != SchemaVersion()-1 {
		t.Errorf("version after one step = %d", v)
	}

	if _, err := MigrateDown(ctx, s.DB(), 0); err != nil {
		t.Fatalf("MigrateDown(all): %v", err)
	}
	if v, _ := CurrentVersion(ctx, s.DB()); v != 0 {
		t.Errorf("version after full revert = %d, want 0", v)
	}

	var n int
	err = s.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'resources'`).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	if n != 0 {
		t.Error("resources table should be dropped")
	}
}

func TestMigrateUp_RefusesNewerSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := MigrateUp(ctx, s.DB()); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES (?, 'future')`, SchemaVersion()+1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := MigrateUp(ctx, s.DB()); err == nil {
		t.Fatal("expected ErrSchemaVersionTooNew")
	}
}
