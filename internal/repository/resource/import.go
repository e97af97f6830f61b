package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/kmsearch/internal/db"
)

// Import writes a bundle in one transaction. Rows are upserted by
// document_id; a re-imported resource has its categories and chapters replaced.
func (r *Repo) Import(ctx context.Context, b *Bundle) (ImportStats, error) {
	if err := b.Validate(); err != nil {
		return ImportStats{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportStats{}, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	imp := &importer{tx: tx, now: formatTime(r.now()),
		users: map[string]int64{}, files: map[string]int64{}, categories: map[string]int64{}}

	stats, err := imp.run(ctx, b)
	if err != nil {
		return ImportStats{}, &db.Error{Op: db.OpInsert, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return ImportStats{}, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("commit: %w", err)}
	}
	return stats, nil
}

type importer struct {
	tx         *sql.Tx
	now        string
	users      map[string]int64
	files      map[string]int64
	categories map[string]int64
}

func (im *importer) run(ctx context.Context, b *Bundle) (ImportStats, error) {
	var stats ImportStats
	for i := range b.Users {
		if err := im.user(ctx, &b.Users[i]); err != nil {
			return stats, err
		}
		stats.Users++
	}
	for i := range b.Files {
		if err := im.file(ctx, &b.Files[i]); err != nil {
			return stats, err
		}
		stats.Files++
	}
	for i := range b.Categories {
		if err := im.category(ctx, &b.Categories[i]); err != nil {
			return stats, err
		}
		stats.Categories++
	}
	for i := range b.Resources {
		n, err := im.resource(ctx, &b.Resources[i])
		if err != nil {
			return stats, err
		}
		stats.Resources++
		stats.Chapters += n
	}
	return stats, nil
}

func (im *importer) ref(m map[string]int64, documentID string) any {
	id, ok := m[documentID]
	return nullInt(id, ok && documentID != "")
}

func (im *importer) user(ctx context.Context, u *UserEntry) error {
	var id int64
	err := im.tx.QueryRowContext(ctx, `
		INSERT INTO admin_users (document_id, firstname, lastname, username, email, password,
			reset_password_token, registration_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			username = excluded.username,
			email = excluded.email,
			password = excluded.password,
			reset_password_token = excluded.reset_password_token,
			registration_token = excluded.registration_token,
			updated_at = excluded.updated_at
		RETURNING id`,
		u.DocumentID, u.Firstname, u.Lastname, u.Username, u.Email, u.Password,
		u.ResetPasswordToken, u.RegistrationToken, im.now, im.now).Scan(&id)
	if err != nil {
		return fmt.Errorf("user %s: %w", u.DocumentID, err)
	}
	im.users[u.DocumentID] = id
	return nil
}

func (im *importer) file(ctx context.Context, f *FileEntry) error {
	var id int64
	err := im.tx.QueryRowContext(ctx, `
		INSERT INTO files (document_id, name, url, mime, size, created_at, updated_at, created_by_id, updated_by_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			mime = excluded.mime,
			size = excluded.size,
			updated_at = excluded.updated_at,
			updated_by_id = excluded.updated_by_id
		RETURNING id`,
		f.DocumentID, f.Name, f.URL, f.Mime, f.Size, im.now, im.now,
		im.ref(im.users, f.CreatedBy), im.ref(im.users, f.UpdatedBy)).Scan(&id)
	if err != nil {
		return fmt.Errorf("file %s: %w", f.DocumentID, err)
	}
	im.files[f.DocumentID] = id
	return nil
}

func (im *importer) category(ctx context.Context, c *CategoryEntry) error {
	var id int64
	err := im.tx.QueryRowContext(ctx, `
		INSERT INTO categories (document_id, name, slug, created_at, updated_at, published_at, created_by_id, updated_by_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			updated_at = excluded.updated_at,
			published_at = excluded.published_at,
			updated_by_id = excluded.updated_by_id
		RETURNING id`,
		c.DocumentID, c.Name, c.Slug, im.now, im.now, formatTimePtr(c.PublishedAt),
		im.ref(im.users, c.CreatedBy), im.ref(im.users, c.UpdatedBy)).Scan(&id)
	if err != nil {
		return fmt.Errorf("category %s: %w", c.DocumentID, err)
	}
	im.categories[c.DocumentID] = id
	return nil
}

func (im *importer) resource(ctx context.Context, res *ResourceEntry) (int, error) {
	var id int64
	err := im.tx.QueryRowContext(ctx, `
		INSERT INTO resources (document_id, title, description, khmer_title, khmer_description, slug, locale,
			created_at, updated_at, published_at, cover_id, created_by_id, updated_by_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			khmer_title = excluded.khmer_title,
			khmer_description = excluded.khmer_description,
			slug = excluded.slug,
			locale = excluded.locale,
			updated_at = excluded.updated_at,
			published_at = excluded.published_at,
			cover_id = excluded.cover_id,
			updated_by_id = excluded.updated_by_id
		RETURNING id`,
		res.DocumentID, res.Title, res.Description, res.KhmerTitle, res.KhmerDescription, res.Slug, res.Locale,
		im.now, im.now, formatTimePtr(res.PublishedAt), im.ref(im.files, res.Cover),
		im.ref(im.users, res.CreatedBy), im.ref(im.users, res.UpdatedBy)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resource %s: %w", res.DocumentID, err)
	}

	if _, err := im.tx.ExecContext(ctx, `DELETE FROM resources_categories_lnk WHERE resource_id = ?`, id); err != nil {
		return 0, fmt.Errorf("resource %s: clear categories: %w", res.DocumentID, err)
	}
	for ord, cat := range res.Categories {
		if _, err := im.tx.ExecContext(ctx,
			`INSERT INTO resources_categories_lnk (resource_id, category_id, category_ord) VALUES (?, ?, ?)`,
			id, im.categories[cat], ord); err != nil {
			return 0, fmt.Errorf("resource %s: link category %s: %w", res.DocumentID, cat, err)
		}
	}

	if _, err := im.tx.ExecContext(ctx, `DELETE FROM resource_chapters WHERE resource_id = ?`, id); err != nil {
		return 0, fmt.Errorf("resource %s: clear chapters: %w", res.DocumentID, err)
	}
	for ord, ch := range res.Chapters {
		if _, err := im.tx.ExecContext(ctx,
			`INSERT INTO resource_chapters (resource_id, ord, title, audio_url, duration, audio_file_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, ord, ch.Title, ch.AudioURL, ch.Duration, im.ref(im.files, ch.AudioFile)); err != nil {
			return 0, fmt.Errorf("resource %s: chapter %d: %w", res.DocumentID, ord, err)
		}
	}
	return len(res.Chapters), nil
}
