package resource

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	domres "github.com/kailas-cloud/kmsearch/internal/domain/resource"
)

// Bundle is the YAML import format. Relations reference rows by document_id.
type Bundle struct {
	Users      []UserEntry     `yaml:"users"`
	Files      []FileEntry     `yaml:"files"`
	Categories []CategoryEntry `yaml:"categories"`
	Resources  []ResourceEntry `yaml:"resources"`
}

// UserEntry is an admin user in a bundle.
type UserEntry struct {
	DocumentID         string `yaml:"document_id"`
	Firstname          string `yaml:"firstname"`
	Lastname           string `yaml:"lastname"`
	Username           string `yaml:"username"`
	Email              string `yaml:"email"`
	Password           string `yaml:"password"`
	ResetPasswordToken string `yaml:"reset_password_token"`
	RegistrationToken  string `yaml:"registration_token"`
}

// AuditEntry names the users that created and last updated a row.
type AuditEntry struct {
	CreatedBy string `yaml:"created_by"`
	UpdatedBy string `yaml:"updated_by"`
}

// FileEntry is a media file in a bundle.
type FileEntry struct {
	DocumentID string  `yaml:"document_id"`
	Name       string  `yaml:"name"`
	URL        string  `yaml:"url"`
	Mime       string  `yaml:"mime"`
	Size       float64 `yaml:"size"`
	AuditEntry `yaml:",inline"`
}

// CategoryEntry is a category in a bundle.
type CategoryEntry struct {
	DocumentID  string     `yaml:"document_id"`
	Name        string     `yaml:"name"`
	Slug        string     `yaml:"slug"`
	PublishedAt *time.Time `yaml:"published_at"`
	AuditEntry  `yaml:",inline"`
}

// ChapterEntry is an audio-book chapter in a bundle.
type ChapterEntry struct {
	Title     string `yaml:"title"`
	AudioURL  string `yaml:"audio_url"`
	Duration  string `yaml:"duration"`
	AudioFile string `yaml:"audio_file"`
}

// ResourceEntry is a searchable resource in a bundle. A nil PublishedAt imports a draft.
type ResourceEntry struct {
	DocumentID       string         `yaml:"document_id"`
	Title            string         `yaml:"title"`
	Description      string         `yaml:"description"`
	KhmerTitle       string         `yaml:"khmer_title"`
	KhmerDescription string         `yaml:"khmer_description"`
	Slug             string         `yaml:"slug"`
	Locale           string         `yaml:"locale"`
	PublishedAt      *time.Time     `yaml:"published_at"`
	Cover            string         `yaml:"cover"`
	Categories       []string       `yaml:"categories"`
	Chapters         []ChapterEntry `yaml:"chapters"`
	AuditEntry       `yaml:",inline"`
}

// ImportStats reports how many rows of each kind were written.
type ImportStats struct {
	Users      int `json:"users"`
	Files      int `json:"files"`
	Categories int `json:"categories"`
	Resources  int `json:"resources"`
	Chapters   int `json:"chapters"`
}

// ParseBundle decodes a YAML bundle and validates its references.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBundle, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks identifiers and that every reference resolves inside the bundle.
func (b *Bundle) Validate() error {
	users := make(map[string]bool, len(b.Users))
	files := make(map[string]bool, len(b.Files))
	categories := make(map[string]bool, len(b.Categories))
	resources := make(map[string]bool, len(b.Resources))

	register := func(kind, id string, seen map[string]bool) error {
		if err := domres.ValidateDocumentID(id); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidBundle, kind, err)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate %s %q", domain.ErrInvalidBundle, kind, id)
		}
		seen[id] = true
		return nil
	}
	ref := func(kind, owner, id string, seen map[string]bool) error {
		if id != "" && !seen[id] {
			return fmt.Errorf("%w: %s references unknown %s %q", domain.ErrInvalidBundle, owner, kind, id)
		}
		return nil
	}
	audit := func(owner string, a AuditEntry) error {
		if err := ref("user", owner, a.CreatedBy, users); err != nil {
			return err
		}
		return ref("user", owner, a.UpdatedBy, users)
	}

	for _, u := range b.Users {
		if err := register("user", u.DocumentID, users); err != nil {
			return err
		}
	}
	for _, f := range b.Files {
		if err := register("file", f.DocumentID, files); err != nil {
			return err
		}
		if err := audit(f.DocumentID, f.AuditEntry); err != nil {
			return err
		}
	}
	for _, c := range b.Categories {
		if err := register("category", c.DocumentID, categories); err != nil {
			return err
		}
		if err := audit(c.DocumentID, c.AuditEntry); err != nil {
			return err
		}
	}
	for _, r := range b.Resources {
		if err := register("resource", r.DocumentID, resources); err != nil {
			return err
		}
		if err := audit(r.DocumentID, r.AuditEntry); err != nil {
			return err
		}
		if err := ref("file", r.DocumentID, r.Cover, files); err != nil {
			return err
		}
		for _, c := range r.Categories {
			if err := ref("category", r.DocumentID, c, categories); err != nil {
				return err
			}
		}
		for _, ch := range r.Chapters {
			if err := ref("file", r.DocumentID, ch.AudioFile, files); err != nil {
				return err
			}
		}
	}
	return nil
}

// Timestamps are stored as RFC 3339 text so ordering and parsing do not
// depend on driver time conversion.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s.String, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullInt(id int64, ok bool) any {
	if !ok {
		return nil
	}
	return id
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
