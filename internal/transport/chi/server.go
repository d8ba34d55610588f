package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	logpkg "github.com/kailas-cloud/talentdex/internal/logger"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
)

// maxBodyBytes caps the search request body. Queries themselves have no
// length limit; this only guards the decoder against unbounded input.
const maxBodyBytes = 4 << 20

// Error codes returned in the "code" field.
const (
	CodeInvalidQuery          = "invalid_query"
	CodeRequestTooLarge       = "request_too_large"
	CodeConfigurationError    = "configuration_error"
	CodeEmbeddingServiceError = "embedding_service_error"
	CodeStoreError            = "store_error"
	CodeTimeout               = "timeout"
	CodeInternalError         = "internal_error"
)

// Searcher runs the matching pipeline.
type Searcher interface {
	Search(ctx context.Context, query string) ([]match.Result, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the matching pipeline over HTTP.
type Server struct {
	search        Searcher
	health        HealthChecker
	searchTimeout time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. searchTimeout <= 0 disables the per-request deadline.
func NewServer(search Searcher, health HealthChecker, searchTimeout time.Duration, logger *zap.Logger) *Server {
	s := &Server{
		search:        search,
		health:        health,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
	// Order matters: a timeout surfaces wrapped in a provider category.
	s.errorHandlers = []errorHandler{
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		configurationHandler,
		sentinelHandler(domain.ErrEmbeddingService, http.StatusBadGateway, CodeEmbeddingServiceError),
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, CodeStoreError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

type searchRequest struct {
	Query *string `json:"query"`
}

type matchResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Accuracy    int    `json:"accuracy"`
	Reason      string `json:"reason"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`
	CVURL       string `json:"cvUrl,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "query must be a JSON string")
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "query is required")
		return
	}

	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}
	ctx, usage := domain.NewContextWithUsage(ctx)

	results, err := s.search.Search(ctx, *req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens()))
	w.Header().Set("X-Synthesis-Fallbacks", strconv.Itoa(usage.SynthesisFallbacks()))
	if usage.RetrievalDegraded() {
		w.Header().Set("X-Retrieval-Degraded", "true")
	}

	out := make([]matchResponse, len(results))
	for i := range results {
		out[i] = toResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func toResponse(r *match.Result) matchResponse {
	return matchResponse{
		ID:          r.ID(),
		Name:        r.Name(),
		Accuracy:    r.Accuracy(),
		Reason:      r.Reason(),
		LinkedinURL: r.LinkedinURL(),
		CVURL:       r.CVURL(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel text only, never the wrapped cause.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// configurationHandler names the missing piece so the operator can fix it.
func configurationHandler(w http.ResponseWriter, err error) bool {
	var ce *domain.ConfigurationError
	if errors.As(err, &ce) {
		writeError(w, http.StatusInternalServerError, CodeConfigurationError, ce.Error())
		return true
	}
	if errors.Is(err, domain.ErrConfiguration) {
		writeError(w, http.StatusInternalServerError, CodeConfigurationError, domain.ErrConfiguration.Error())
		return true
	}
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("search failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
