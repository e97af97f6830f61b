package match

import "github.com/kailas-cloud/kmsearch/internal/domain/search/stage"

// Set is the outcome of one cascade run: the page of matching document ids in
// storage order, the unbounded match count and the stage that produced them.
type Set struct {
	Stage       stage.Stage `json:"stage"`
	DocumentIDs []string    `json:"document_ids"`
	Total       int         `json:"total"`
}

// None returns the terminal empty set.
func None() Set {
	return Set{Stage: stage.Empty}
}

// IsEmpty reports whether no stage matched.
func (s Set) IsEmpty() bool { return s.Total == 0 }
