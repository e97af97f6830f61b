package request

import (
	"fmt"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search text length in bytes.
	MaxQueryLength  = 1024
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Request is a validated search query.
type Request struct {
	text     string
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: page=1, pageSize=25. Non-positive values fall back to defaults,
// pageSize is clamped to maxPageSize (MaxPageSize when maxPageSize <= 0).
// Empty text is valid and yields a blank request.
func New(text string, page, pageSize, maxPageSize int) (Request, error) {
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: search text too long (max %d bytes)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return Request{text: text, page: page, pageSize: pageSize}, nil
}

// Text returns the raw search text as supplied by the caller.
func (r *Request) Text() string { return r.text }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of documents per page.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the number of matches skipped before this page.
func (r *Request) Offset() int { return (r.page - 1) * r.pageSize }

// IsBlank reports whether the text has no meaningful content once
// whitespace and zero-width spaces are removed.
func (r *Request) IsBlank() bool { return khmer.IsBlank(r.text) }
