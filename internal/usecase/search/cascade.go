package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/match"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/stage"
	"github.com/kailas-cloud/kmsearch/internal/logger"
)

// Cascade tries Phrase, WordSplit and Segmented in order and stops at the
// first stage whose count is positive.
type Cascade struct {
	store  Matcher
	seg    Segmenter
	logger *zap.Logger
}

// NewCascade creates the stage pipeline. A nil segmenter disables the Segmented stage.
func NewCascade(store Matcher, seg Segmenter, l *zap.Logger) *Cascade {
	return &Cascade{store: store, seg: seg, logger: l}
}

// Run executes the pipeline. A blank request returns match.None without storage access.
// Storage failures return a *domain.StageError naming the failing stage.
func (c *Cascade) Run(ctx context.Context, req request.Request) (match.Set, error) {
	log := logger.FromContextOr(ctx, c.logger)
	if req.IsBlank() {
		return match.None(), nil
	}

	for st := stage.First(); !st.IsTerminal(); st = st.Next() {
		terms := c.terms(ctx, log, st, req.Text())
		if len(terms) == 0 {
			log.Debug("Stage skipped, no terms", zap.String("stage", st.String()))
			continue
		}

		total, err := c.store.Count(ctx, terms)
		if err != nil {
			log.Error("Search count failed",
				zap.String("stage", st.String()), zap.String("search", req.Text()), zap.Error(err))
			return match.Set{}, domain.NewStageError(st.String(), err)
		}
		if total == 0 {
			log.Debug("Stage matched nothing",
				zap.String("stage", st.String()), zap.Strings("terms", terms))
			continue
		}

		ids, err := c.store.Match(ctx, terms, req.PageSize(), req.Offset())
		if err != nil {
			log.Error("Search match failed",
				zap.String("stage", st.String()), zap.String("search", req.Text()), zap.Error(err))
			return match.Set{}, domain.NewStageError(st.String(), err)
		}

		log.Debug("Stage matched",
			zap.String("stage", st.String()), zap.Int("total", total), zap.Int("page_ids", len(ids)))
		return match.Set{Stage: st, DocumentIDs: ids, Total: total}, nil
	}

	return match.None(), nil
}

// terms produces the search terms of a stage. Segmentation failures are
// logged and yield no terms.
func (c *Cascade) terms(ctx context.Context, log *zap.Logger, st stage.Stage, text string) []string {
	switch st {
	case stage.Phrase:
		return PhraseTerms(text)
	case stage.WordSplit:
		return WordSplitTerms(text)
	case stage.Segmented:
		if c.seg == nil {
			log.Warn("Segmentation unavailable",
				zap.String("stage", st.String()), zap.String("search", text),
				zap.Error(domain.ErrSegmenterUnavailable))
			return nil
		}
		tokens, err := c.seg.Segment(ctx, text)
		if err != nil {
			log.Warn("Segmentation failed",
				zap.String("stage", st.String()), zap.String("provider", c.seg.Name()),
				zap.String("search", text), zap.Error(err))
			return nil
		}
		return dedupe(tokens)
	default:
		return nil
	}
}

// PhraseTerms returns the whole input, normalized and trimmed, as one term.
func PhraseTerms(text string) []string {
	phrase := khmer.Trim(khmer.Normalize(text))
	if phrase == "" {
		return nil
	}
	return []string{phrase}
}

// WordSplitTerms splits the original input on runs of whitespace and zero-width spaces.
func WordSplitTerms(text string) []string {
	return dedupe(khmer.SplitWords(text))
}

// dedupe drops blank and repeated terms, keeping first-seen order.
func dedupe(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = khmer.Trim(khmer.Normalize(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
