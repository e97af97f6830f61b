// Package resource models searchable resources as stored (Record) and as
// returned to callers (Document). Only Redact converts one into the other.
package resource

import (
	"fmt"
	"regexp"
	"time"
)

var documentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDocumentIDLength is the maximum length of a document identifier.
const MaxDocumentIDLength = 256

// AdminUser is a stored back-office account, credentials included.
type AdminUser struct {
	ID                 int64
	DocumentID         string
	Firstname          string
	Lastname           string
	Username           string
	Email              string
	Password           string
	ResetPasswordToken string
	RegistrationToken  string
}

// Audit holds the audit-trail actors of a stored row.
type Audit struct {
	CreatedBy *AdminUser
	UpdatedBy *AdminUser
}

// FileRecord is an uploaded media file.
type FileRecord struct {
	ID         int64
	DocumentID string
	Name       string
	URL        string
	Mime       string
	Size       float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Audit
}

// CategoryRecord is a category a resource is filed under.
type CategoryRecord struct {
	ID          int64
	DocumentID  string
	Name        string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
	Audit
}

// ChapterRecord is one audio-book chapter embedded in a resource.
type ChapterRecord struct {
	ID        int64
	Title     string
	AudioURL  string
	Duration  string
	AudioFile *FileRecord
}

// Record is a stored resource with all relations populated.
type Record struct {
	ID               int64
	DocumentID       string
	Title            string
	Description      string
	KhmerTitle       string
	KhmerDescription string
	Slug             string
	Locale           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
	Cover            *FileRecord
	Categories       []CategoryRecord
	Chapters         []ChapterRecord
	Audit
}

// IsPublished reports whether the record is visible to search.
func (r *Record) IsPublished() bool { return r.PublishedAt != nil }

// ValidateDocumentID checks a document identifier: ^[a-zA-Z0-9_-]+$, 1-256 chars.
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(id) > MaxDocumentIDLength {
		return fmt.Errorf("document ID too long (max %d)", MaxDocumentIDLength)
	}
	if !documentIDRegex.MatchString(id) {
		return fmt.Errorf("document ID %q must be alphanumeric with underscores and hyphens", id)
	}
	return nil
}
