// Package cluster segments text without a dictionary. Non-Khmer text follows
// Unicode word boundaries; Khmer runs are broken into orthographic syllables.
package cluster

import (
	"context"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
)

// Name identifies the provider in logs and metrics.
const Name = "cluster"

// Segmenter is a deterministic, in-process segmenter.
type Segmenter struct {
	minLength int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithMinLength drops non-Khmer tokens shorter than n user-perceived characters.
func WithMinLength(n int) Option {
	return func(s *Segmenter) { s.minLength = n }
}

// New creates a cluster segmenter.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{minLength: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name returns the provider name.
func (s *Segmenter) Name() string { return Name }

// Segment splits text into search tokens. Separators and punctuation are dropped,
// duplicate tokens are kept once in first-seen order.
func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text = khmer.Normalize(text)
	var tokens []string
	seen := make(map[string]bool)
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	for _, run := range splitKhmerRuns(text) {
		if containsKhmer(run) {
			for _, syl := range syllables(run) {
				if isWordLike(syl) {
					add(syl)
				}
			}
			continue
		}
		state := -1
		var word string
		for len(run) > 0 {
			word, run, state = uniseg.FirstWordInString(run, state)
			if isWordLike(word) && uniseg.GraphemeClusterCount(word) >= s.minLength {
				add(word)
			}
		}
	}
	return tokens, nil
}

// isWordLike reports whether a segment has at least one letter or digit.
func isWordLike(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) {
			return true
		}
	}
	return false
}

func containsKhmer(s string) bool {
	for _, r := range s {
		if khmer.IsKhmer(r) {
			return true
		}
	}
	return false
}

// splitKhmerRuns separates text into alternating Khmer and non-Khmer runs.
func splitKhmerRuns(word string) []string {
	var runs []string
	start := 0
	inKhmer := false
	for i, r := range word {
		k := khmer.IsKhmer(r)
		if i > start && k != inKhmer {
			runs = append(runs, word[start:i])
			start = i
		}
		inKhmer = k
	}
	if start < len(word) {
		runs = append(runs, word[start:])
	}
	return runs
}
