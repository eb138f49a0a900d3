// Package chi exposes the search service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// Request defaults applied when the query string omits a parameter.
const (
	DefaultTopK           = 8
	DefaultScoreThreshold = 0.20
)

// Error codes returned in the error response body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeEmbeddingError   = "embedding_provider_error"
	codeInternalError    = "internal_error"
)

type searchService interface {
	Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
}

type catalogService interface {
	Reindex(ctx context.Context) (int, error)
	Rebuild(ctx context.Context) (int, error)
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecases into HTTP handlers.
type Server struct {
	search        searchService
	catalog       catalogService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler

	defaultTopK     int
	defaultMinScore float64
}

// Option customizes the server.
type Option func(*Server)

// WithSearchDefaults overrides the request defaults applied when the
// query string omits top_k or score_threshold.
func WithSearchDefaults(topK int, minScore float64) Option {
	return func(s *Server) {
		if topK > 0 {
			s.defaultTopK = topK
		}
		if minScore > 0 {
			s.defaultMinScore = minScore
		}
	}
}

// NewServer creates an HTTP API server.
func NewServer(
	search searchService,
	catalog catalogService,
	health healthService,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		search:          search,
		catalog:         catalog,
		health:          health,
		logger:          logger,
		defaultTopK:     DefaultTopK,
		defaultMinScore: DefaultScoreThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidCatalog, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Post("/reindex", s.handleReindex)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// --- DTOs ---

type searchItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
}

type searchResponse struct {
	Query        string       `json:"query"`
	CleanedQuery string       `json:"cleaned_query"`
	MinPrice     *float64     `json:"min_price"`
	MaxPrice     *float64     `json:"max_price"`
	Items        []searchItem `json:"items"`
}

type reindexResponse struct {
	OK      bool `json:"ok"`
	Indexed int  `json:"indexed"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Indexed int               `json:"indexed"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// handleSearch handles GET /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := searchuc.Request{
		Query:    q.Get("q"),
		TopK:     s.defaultTopK,
		MinScore: s.defaultMinScore,
		Category: q.Get("category"),
	}

	if raw := q.Get("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "top_k must be an integer")
			return
		}
		req.TopK = v
	}

	if raw := q.Get("score_threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "score_threshold must be a number")
			return
		}
		req.MinScore = v
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if resp.Range.IsZero() {
		metrics.SearchQueriesTotal.WithLabelValues("unconstrained").Inc()
	} else {
		metrics.SearchQueriesTotal.WithLabelValues("constrained").Inc()
	}
	metrics.SearchResultsReturned.Observe(float64(len(resp.Results)))

	items := make([]searchItem, len(resp.Results))
	for i := range resp.Results {
		res := &resp.Results[i]
		items[i] = searchItem{
			ID:          res.ID(),
			Name:        res.Name(),
			Description: res.Description(),
			Price:       res.Price(),
			Category:    res.Category(),
			Score:       res.Score(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:        req.Query,
		CleanedQuery: resp.CleanedQuery,
		MinPrice:     resp.Range.Min,
		MaxPrice:     resp.Range.Max,
		Items:        items,
	})
}

// handleReindex handles POST /reindex. With rebuild=true the index is
// dropped and recreated before indexing, picking up schema changes.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	reindex := s.catalog.Reindex
	if r.URL.Query().Get("rebuild") == "true" {
		reindex = s.catalog.Rebuild
	}

	n, err := reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{OK: true, Indexed: n})
}

// handleHealth handles GET /health. Degraded reports still return 200:
// the process is up, load balancers read the body.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Indexed: report.Indexed,
	})
}

// --- Error mapping ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidCatalog,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
