package resource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kailas-cloud/kmsearch/internal/db"
	domres "github.com/kailas-cloud/kmsearch/internal/domain/resource"
)

// Repo reads and writes resources with their relations.
type Repo struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a resource repository.
func New(sqlDB *sql.DB) *Repo {
	return &Repo{db: sqlDB, now: time.Now}
}

// auditIDs are the raw foreign keys of an audited row, resolved after the batch loads.
type auditIDs struct {
	createdBy sql.NullInt64
	updatedBy sql.NullInt64
}

type resourceRow struct {
	rec     domres.Record
	coverID sql.NullInt64
	audit   auditIDs
}

type fileRow struct {
	rec   domres.FileRecord
	audit auditIDs
}

type categoryRow struct {
	resourceID int64
	rec        domres.CategoryRecord
	audit      auditIDs
}

type chapterRow struct {
	resourceID  int64
	rec         domres.ChapterRecord
	audioFileID sql.NullInt64
}

// FetchPublished loads published resources by document id with cover,
// categories, chapters and audit users populated. Unknown or unpublished ids
// are absent from the result; order is unspecified.
func (r *Repo) FetchPublished(ctx context.Context, documentIDs []string) ([]domres.Record, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	resources, err := r.loadResources(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, nil
	}

	resourceIDs := make([]int64, len(resources))
	for i := range resources {
		resourceIDs[i] = resources[i].rec.ID
	}

	categories, err := r.loadCategories(ctx, resourceIDs)
	if err != nil {
		return nil, err
	}
	chapters, err := r.loadChapters(ctx, resourceIDs)
	if err != nil {
		return nil, err
	}

	fileIDs := newIDSet()
	for i := range resources {
		fileIDs.addNull(resources[i].coverID)
	}
	for i := range chapters {
		fileIDs.addNull(chapters[i].audioFileID)
	}
	files, err := r.loadFiles(ctx, fileIDs.list())
	if err != nil {
		return nil, err
	}

	userIDs := newIDSet()
	for i := range resources {
		userIDs.addAudit(resources[i].audit)
	}
	for i := range categories {
		userIDs.addAudit(categories[i].audit)
	}
	for _, f := range files {
		userIDs.addAudit(f.audit)
	}
	users, err := r.loadUsers(ctx, userIDs.list())
	if err != nil {
		return nil, err
	}

	resolve := func(a auditIDs) domres.Audit {
		return domres.Audit{CreatedBy: users[a.createdBy.Int64], UpdatedBy: users[a.updatedBy.Int64]}
	}
	fileByID := make(map[int64]*domres.FileRecord, len(files))
	for id, f := range files {
		rec := f.rec
		rec.Audit = resolve(f.audit)
		fileByID[id] = &rec
	}

	byResource := make(map[int64]*domres.Record, len(resources))
	out := make([]domres.Record, len(resources))
	for i := range resources {
		row := &resources[i]
		out[i] = row.rec
		out[i].Audit = resolve(row.audit)
		if row.coverID.Valid {
			out[i].Cover = fileByID[row.coverID.Int64]
		}
		out[i].Categories = []domres.CategoryRecord{}
		out[i].Chapters = []domres.ChapterRecord{}
		byResource[row.rec.ID] = &out[i]
	}
	for i := range categories {
		c := &categories[i]
		rec := c.rec
		rec.Audit = resolve(c.audit)
		owner := byResource[c.resourceID]
		owner.Categories = append(owner.Categories, rec)
	}
	for i := range chapters {
		c := &chapters[i]
		rec := c.rec
		if c.audioFileID.Valid {
			rec.AudioFile = fileByID[c.audioFileID.Int64]
		}
		owner := byResource[c.resourceID]
		owner.Chapters = append(owner.Chapters, rec)
	}
	return out, nil
}

func (r *Repo) loadResources(ctx context.Context, documentIDs []string) ([]resourceRow, error) {
	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}
	query := `SELECT id, document_id, title, description, khmer_title, khmer_description, slug, locale,
		created_at, updated_at, published_at, cover_id, created_by_id, updated_by_id
		FROM resources
		WHERE document_id IN (` + placeholders(len(documentIDs)) + `) AND published_at IS NOT NULL
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("resources: %w", err)}
	}
	defer rows.Close()

	var out []resourceRow
	for rows.Next() {
		var (
			row                               resourceRow
			title, desc, kmTitle, kmDesc      sql.NullString
			slug, locale                      sql.NullString
			createdAt, updatedAt, publishedAt sql.NullString
		)
		if err := rows.Scan(&row.rec.ID, &row.rec.DocumentID, &title, &desc, &kmTitle, &kmDesc, &slug, &locale,
			&createdAt, &updatedAt, &publishedAt, &row.coverID, &row.audit.createdBy, &row.audit.updatedBy); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("scan resource: %w", err)}
		}
		row.rec.Title, row.rec.Description = title.String, desc.String
		row.rec.KhmerTitle, row.rec.KhmerDescription = kmTitle.String, kmDesc.String
		row.rec.Slug, row.rec.Locale = slug.String, locale.String
		if row.rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		if row.rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		if row.rec.PublishedAt, err = parseTimePtr(publishedAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: err}
	}
	return out, nil
}

func (r *Repo) loadCategories(ctx context.Context, resourceIDs []int64) ([]categoryRow, error) {
	query := `SELECT l.resource_id, c.id, c.document_id, c.name, c.slug, c.created_at, c.updated_at,
		c.published_at, c.created_by_id, c.updated_by_id
		FROM resources_categories_lnk l
		JOIN categories c ON c.id = l.category_id
		WHERE l.resource_id IN (` + placeholders(len(resourceIDs)) + `)
		ORDER BY l.resource_id, l.category_ord`

	rows, err := r.db.QueryContext(ctx, query, int64Args(resourceIDs)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("categories: %w", err)}
	}
	defer rows.Close()

	var out []categoryRow
	for rows.Next() {
		var (
			row                               categoryRow
			name, slug                        sql.NullString
			createdAt, updatedAt, publishedAt sql.NullString
		)
		if err := rows.Scan(&row.resourceID, &row.rec.ID, &row.rec.DocumentID, &name, &slug,
			&createdAt, &updatedAt, &publishedAt, &row.audit.createdBy, &row.audit.updatedBy); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("scan category: %w", err)}
		}
		row.rec.Name, row.rec.Slug = name.String, slug.String
		if row.rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		if row.rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		if row.rec.PublishedAt, err = parseTimePtr(publishedAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: err}
	}
	return out, nil
}

func (r *Repo) loadChapters(ctx context.Context, resourceIDs []int64) ([]chapterRow, error) {
	query := `SELECT resource_id, id, title, audio_url, duration, audio_file_id
		FROM resource_chapters
		WHERE resource_id IN (` + placeholders(len(resourceIDs)) + `)
		ORDER BY resource_id, ord, id`

	rows, err := r.db.QueryContext(ctx, query, int64Args(resourceIDs)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("chapters: %w", err)}
	}
	defer rows.Close()

	var out []chapterRow
	for rows.Next() {
		var (
			row                       chapterRow
			title, audioURL, duration sql.NullString
		)
		if err := rows.Scan(&row.resourceID, &row.rec.ID, &title, &audioURL, &duration, &row.audioFileID); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("scan chapter: %w", err)}
		}
		row.rec.Title, row.rec.AudioURL, row.rec.Duration = title.String, audioURL.String, duration.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: err}
	}
	return out, nil
}

func (r *Repo) loadFiles(ctx context.Context, ids []int64) (map[int64]fileRow, error) {
	out := make(map[int64]fileRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id, document_id, name, url, mime, size, created_at, updated_at, created_by_id, updated_by_id
		FROM files WHERE id IN (` + placeholders(len(ids)) + `)`

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("files: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row                  fileRow
			name, url, mime      sql.NullString
			size                 sql.NullFloat64
			createdAt, updatedAt sql.NullString
		)
		if err := rows.Scan(&row.rec.ID, &row.rec.DocumentID, &name, &url, &mime, &size,
			&createdAt, &updatedAt, &row.audit.createdBy, &row.audit.updatedBy); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("scan file: %w", err)}
		}
		row.rec.Name, row.rec.URL, row.rec.Mime, row.rec.Size = name.String, url.String, mime.String, size.Float64
		if row.rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		if row.rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: err}
		}
		out[row.rec.ID] = row
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: err}
	}
	return out, nil
}

func (r *Repo) loadUsers(ctx context.Context, ids []int64) (map[int64]*domres.AdminUser, error) {
	out := make(map[int64]*domres.AdminUser, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id, document_id, firstname, lastname, username, email, password,
		reset_password_token, registration_token
		FROM admin_users WHERE id IN (` + placeholders(len(ids)) + `)`

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("users: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u                                  domres.AdminUser
			first, last, username, email, pass sql.NullString
			resetToken, regToken               sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.DocumentID, &first, &last, &username, &email, &pass,
			&resetToken, &regToken); err != nil {
			return nil, &db.Error{Op: db.OpFetch, Err: fmt.Errorf("scan user: %w", err)}
		}
		u.Firstname, u.Lastname, u.Username, u.Email = first.String, last.String, username.String, email.String
		u.Password, u.ResetPasswordToken, u.RegistrationToken = pass.String, resetToken.String, regToken.String
		out[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFetch, Err: err}
	}
	return out, nil
}

// idSet collects distinct ids preserving first-seen order.
type idSet struct {
	seen map[int64]bool
	ids  []int64
}

func newIDSet() *idSet { return &idSet{seen: make(map[int64]bool)} }

func (s *idSet) addNull(id sql.NullInt64) {
	if !id.Valid || s.seen[id.Int64] {
		return
	}
	s.seen[id.Int64] = true
	s.ids = append(s.ids, id.Int64)
}

func (s *idSet) addAudit(a auditIDs) {
	s.addNull(a.createdBy)
	s.addNull(a.updatedBy)
}

func (s *idSet) list() []int64 { return s.ids }
