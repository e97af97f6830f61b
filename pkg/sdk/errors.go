package kmsearch

import "github.com/kailas-cloud/kmsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSearchFailed         = domain.ErrSearchFailed
	ErrInvalidQuery         = domain.ErrInvalidQuery
	ErrInvalidBundle        = domain.ErrInvalidBundle
	ErrSegmenterUnavailable = domain.ErrSegmenterUnavailable
)
