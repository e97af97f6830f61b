// Package segment holds provider-independent segmentation helpers: the
// disabled provider and a metrics decorator.
package segment

import (
	"context"
	"time"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
	"github.com/kailas-cloud/kmsearch/internal/metrics"
)

// Provider names.
const (
	ProviderNone    = "none"
	ProviderCluster = "cluster"
	ProviderOpenAI  = "openai"
)

// Segmenter breaks text into search tokens.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
	Name() string
}

// Unavailable is the provider used when segmentation is disabled.
type Unavailable struct{}

// Name returns the provider name.
func (Unavailable) Name() string { return ProviderNone }

// Segment always fails with domain.ErrSegmenterUnavailable.
func (Unavailable) Segment(context.Context, string) ([]string, error) {
	return nil, domain.ErrSegmenterUnavailable
}

// Instrumented records request counts and latency for a provider and cleans its output.
type Instrumented struct {
	inner Segmenter
}

// Instrument wraps s with metrics.
func Instrument(s Segmenter) *Instrumented {
	return &Instrumented{inner: s}
}

// Name returns the wrapped provider name.
func (i *Instrumented) Name() string { return i.inner.Name() }

// Segment delegates to the provider. Tokens are normalized, trimmed and
// blank tokens removed so callers always receive valid search terms.
func (i *Instrumented) Segment(ctx context.Context, text string) ([]string, error) {
	provider := i.inner.Name()
	start := time.Now()

	tokens, err := i.inner.Segment(ctx, text)

	metrics.SegmenterRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SegmenterRequestsTotal.WithLabelValues(provider, "error").Inc()
		return nil, err
	}
	metrics.SegmenterRequestsTotal.WithLabelValues(provider, "success").Inc()
	return Clean(tokens), nil
}

// Clean normalizes tokens, drops blanks and duplicates, keeping first-seen order.
func Clean(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		t = khmer.Trim(khmer.Normalize(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
