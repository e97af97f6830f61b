package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/stage"
	"github.com/kailas-cloud/kmsearch/internal/logger"
	"github.com/kailas-cloud/kmsearch/internal/metrics"
)

// Service runs Khmer full-text searches and assembles redacted result pages.
type Service struct {
	runner      Runner
	reader      ResourceReader
	maxPageSize int
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxPageSize caps the page size accepted from callers.
func WithMaxPageSize(n int) Option {
	return func(s *Service) { s.maxPageSize = n }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a search service.
func New(runner Runner, reader ResourceReader, opts ...Option) *Service {
	s := &Service{
		runner:      runner,
		reader:      reader,
		maxPageSize: request.MaxPageSize,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search validates the parameters, runs the cascade and assembles the page.
// Non-positive page or pageSize fall back to the defaults.
func (s *Service) Search(ctx context.Context, text string, page, pageSize int) (result.Result, error) {
	req, err := request.New(text, page, pageSize, s.maxPageSize)
	if err != nil {
		return result.Result{}, err
	}
	if req.IsBlank() {
		return result.Empty(req.Page(), req.PageSize()), nil
	}

	start := time.Now()
	set, err := s.runner.Run(ctx, req)
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues(failedStage(err)).Inc()
		return result.Result{}, fmt.Errorf("match: %w", err)
	}

	res, err := s.assemble(ctx, set.DocumentIDs, req.Page(), req.PageSize(), set.Total)
	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues("assemble").Inc()
		return result.Result{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(set.Stage.String()).Inc()
	metrics.SearchDuration.WithLabelValues(set.Stage.String()).Observe(time.Since(start).Seconds())
	return res, nil
}

// assemble fetches, redacts and orders the documents of one page.
func (s *Service) assemble(ctx context.Context, ids []string, page, pageSize, total int) (result.Result, error) {
	if len(ids) == 0 {
		return result.Empty(page, pageSize), nil
	}

	records, err := s.reader.FetchPublished(ctx, ids)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Error("Fetch resources failed",
			zap.Int("ids", len(ids)), zap.Error(err))
		return result.Result{}, domain.NewStageError("assemble", err)
	}

	docs := Reorder(ids, resource.RedactAll(records))
	if missing := len(ids) - len(docs); missing > 0 {
		logger.FromContextOr(ctx, s.logger).Debug("Matched resources missing from fetch",
			zap.Int("missing", missing))
	}
	return result.New(docs, page, pageSize, total), nil
}

// Reorder arranges docs to follow ids. Ids without a document are dropped.
func Reorder(ids []string, docs []resource.Document) []resource.Document {
	byID := make(map[string]int, len(docs))
	for i := range docs {
		byID[docs[i].DocumentID] = i
	}
	out := make([]resource.Document, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			out = append(out, docs[i])
		}
	}
	return out
}

func failedStage(err error) string {
	var se *domain.StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return stage.Empty.String()
}
