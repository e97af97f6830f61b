package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuery signals a search request that cannot be served.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidBundle signals an import bundle that fails validation.
	ErrInvalidBundle = errors.New("invalid import bundle")
	// ErrSearchFailed signals a storage failure during search.
	ErrSearchFailed = errors.New("error performing khmer search")
	// ErrSegmenterUnavailable signals that no word segmentation could be produced.
	ErrSegmenterUnavailable = errors.New("segmenter unavailable")
	// ErrUnauthorized signals a missing or wrong API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// StageError wraps ErrSearchFailed with the cascade stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: stage %s: %v", ErrSearchFailed.Error(), e.Stage, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StageError) Unwrap() []error { return []error{ErrSearchFailed, e.Err} }

// NewStageError creates a search failure attributed to a stage.
func NewStageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
