package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/kmsearch/internal/db"
)

// ErrSchemaVersionTooNew is returned when the database was migrated by a newer build.
var ErrSchemaVersionTooNew = errors.New("database schema version is newer than supported")

// Migration is one reversible schema step.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrations returns all migrations in order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_content_tables", Up: schemaV1Up, Down: schemaV1Down},
		{Version: 2, Name: "create_search_indexes", Up: schemaV2Up, Down: schemaV2Down},
	}
}

// SchemaVersion is the latest version this build knows about.
func SchemaVersion() int {
	m := Migrations()
	return m[len(m)-1].Version
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const schemaV1Up = `
CREATE TABLE IF NOT EXISTS admin_users (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id          TEXT NOT NULL UNIQUE,
	firstname            TEXT,
	lastname             TEXT,
	username             TEXT,
	email                TEXT,
	password             TEXT,
	reset_password_token TEXT,
	registration_token   TEXT,
	created_at           TEXT,
	updated_at           TEXT
);

CREATE TABLE IF NOT EXISTS files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id   TEXT NOT NULL UNIQUE,
	name          TEXT,
	url           TEXT,
	mime          TEXT,
	size          REAL,
	created_at    TEXT,
	updated_at    TEXT,
	created_by_id INTEGER REFERENCES admin_users(id) ON DELETE SET NULL,
	updated_by_id INTEGER REFERENCES admin_users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id   TEXT NOT NULL UNIQUE,
	name          TEXT,
	slug          TEXT,
	created_at    TEXT,
	updated_at    TEXT,
	published_at  TEXT,
	created_by_id INTEGER REFERENCES admin_users(id) ON DELETE SET NULL,
	updated_by_id INTEGER REFERENCES admin_users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS resources (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id       TEXT NOT NULL UNIQUE,
	title             TEXT,
	description       TEXT,
	khmer_title       TEXT,
	khmer_description TEXT,
	slug              TEXT,
	locale            TEXT,
	created_at        TEXT,
	updated_at        TEXT,
	published_at      TEXT,
	cover_id          INTEGER REFERENCES files(id) ON DELETE SET NULL,
	created_by_id     INTEGER REFERENCES admin_users(id) ON DELETE SET NULL,
	updated_by_id     INTEGER REFERENCES admin_users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS resources_categories_lnk (
	resource_id  INTEGER NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	category_id  INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	category_ord INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (resource_id, category_id)
);

CREATE TABLE IF NOT EXISTS resource_chapters (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	resource_id   INTEGER NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	ord           INTEGER NOT NULL DEFAULT 0,
	title         TEXT,
	audio_url     TEXT,
	duration      TEXT,
	audio_file_id INTEGER REFERENCES files(id) ON DELETE SET NULL
);
`

const schemaV1Down = `
DROP TABLE IF EXISTS resource_chapters;
DROP TABLE IF EXISTS resources_categories_lnk;
DROP TABLE IF EXISTS resources;
DROP TABLE IF EXISTS categories;
DROP TABLE IF EXISTS files;
DROP TABLE IF EXISTS admin_users;
`

const schemaV2Up = `
CREATE INDEX IF NOT EXISTS idx_resources_published_at ON resources(published_at);
CREATE INDEX IF NOT EXISTS idx_resource_chapters_resource ON resource_chapters(resource_id, ord);
CREATE INDEX IF NOT EXISTS idx_resources_categories_lnk_ord ON resources_categories_lnk(resource_id, category_ord);
`

const schemaV2Down = `
DROP INDEX IF EXISTS idx_resources_categories_lnk_ord;
DROP INDEX IF EXISTS idx_resource_chapters_resource;
DROP INDEX IF EXISTS idx_resources_published_at;
`

// CurrentVersion returns the highest applied migration version, 0 for a fresh database.
func CurrentVersion(ctx context.Context, q db.Querier) (int, error) {
	if _, err := q.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("create schema_migrations: %w", err)}
	}
	var version int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("read schema version: %w", err)}
	}
	return version, nil
}

// MigrateUp applies all pending migrations, each in its own transaction.
// It returns the number of migrations applied.
func MigrateUp(ctx context.Context, sqlDB *sql.DB) (int, error) {
	current, err := CurrentVersion(ctx, sqlDB)
	if err != nil {
		return 0, err
	}
	if current > SchemaVersion() {
		return 0, fmt.Errorf("%w: database version %d, supported version %d",
			ErrSchemaVersionTooNew, current, SchemaVersion())
	}

	applied := 0
	for _, m := range Migrations() {
		if m.Version <= current {
			continue
		}
		err := inTx(ctx, sqlDB, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return applied, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("apply %d_%s: %w", m.Version, m.Name, err)}
		}
		applied++
	}
	return applied, nil
}

// MigrateDown reverts up to steps applied migrations, newest first.
// steps <= 0 reverts everything.
func MigrateDown(ctx context.Context, sqlDB *sql.DB, steps int) (int, error) {
	current, err := CurrentVersion(ctx, sqlDB)
	if err != nil {
		return 0, err
	}

	all := Migrations()
	reverted := 0
	for i := len(all) - 1; i >= 0; i-- {
		if steps > 0 && reverted >= steps {
			break
		}
		m := all[i]
		if m.Version > current {
			continue
		}
		err := inTx(ctx, sqlDB, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.Version)
			return err
		})
		if err != nil {
			return reverted, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("revert %d_%s: %w", m.Version, m.Name, err)}
		}
		reverted++
	}
	return reverted, nil
}

func inTx(ctx context.Context, sqlDB *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
