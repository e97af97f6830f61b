package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kmsearch/internal/logger"
	gen "github.com/kailas-cloud/kmsearch/internal/transport/generated"
	healthuc "github.com/kailas-cloud/kmsearch/internal/usecase/health"
)

// searchFailedMessage is the only message clients see for storage failures.
const searchFailedMessage = "Error performing Khmer search"

// Searcher runs a Khmer search.
type Searcher interface {
	Search(ctx context.Context, text string, page, pageSize int) (result.Result, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// searchResponse is the body of GET /api/resources/khmer-search.
type searchResponse struct {
	Data []resource.Document `json:"data"`
	Meta gen.SearchMeta      `json:"meta"`
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, gen.ErrorResponseCodeInvalidQuery),
	}
	return s
}

// KhmerSearch handles GET /api/resources/khmer-search.
func (s *Server) KhmerSearch(w http.ResponseWriter, r *http.Request, params gen.KhmerSearchParams) {
	res, err := s.search.Search(r.Context(), derefString(params.Search), derefInt(params.Page), derefInt(params.PageSize))
	if err != nil {
		s.handleSearchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Data: res.Documents,
		Meta: gen.SearchMeta{Pagination: paginationToGen(res.Pagination)},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: gen.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler answers parameter binding failures with 400.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *gen.InvalidParamFormatError
	msg := "invalid request"
	if errors.As(err, &pe) {
		msg = "invalid value for parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, msg)
}

func (s *Server) handleSearchError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logger.FromContextOr(r.Context(), s.logger).Warn("Rejected search", zap.Error(err))
			return
		}
	}
	logger.FromContextOr(r.Context(), s.logger).Error("Khmer search failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, searchFailedMessage)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func paginationToGen(p result.Pagination) gen.Pagination {
	return gen.Pagination{
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount,
		Total:     p.Total,
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
