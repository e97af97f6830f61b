package search

import (
	"context"

	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/match"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
)

// Matcher runs term predicates against storage.
type Matcher interface {
	Count(ctx context.Context, terms []string) (int, error)
	Match(ctx context.Context, terms []string, limit, offset int) ([]string, error)
}

// ResourceReader loads published records with relations populated.
type ResourceReader interface {
	FetchPublished(ctx context.Context, documentIDs []string) ([]resource.Record, error)
}

// Segmenter breaks text into tokens for the last cascade stage.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
	Name() string
}

// Runner produces the match set for a request. Cascade implements it;
// the match cache decorates it.
type Runner interface {
	Run(ctx context.Context, req request.Request) (match.Set, error)
}
