package kmsearch

import (
	"context"

	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/result"
	resourcerepo "github.com/kailas-cloud/kmsearch/internal/repository/resource"
)

// Public result types.
type (
	// Document is a redacted published resource.
	Document = resource.Document
	// UserRef is the public projection of an audit actor.
	UserRef = resource.UserRef
	// Media is a public media file.
	Media = resource.Media
	// Category is a public category.
	Category = resource.Category
	// Chapter is an audio-book chapter.
	Chapter = resource.Chapter
	// Pagination describes a result page.
	Pagination = result.Pagination
	// ImportStats reports how many rows an import wrote.
	ImportStats = resourcerepo.ImportStats
)

// Result is one page of search results.
type Result struct {
	Documents  []Document
	Pagination Pagination
}

// Segmenter splits text into search tokens for the segmented stage.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
	Name() string
}
