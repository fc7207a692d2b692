package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	logpkg "github.com/kailas-cloud/sphinxsuggest/internal/logger"
	healthuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/health"
	searchuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/search"
)

// maxBodyBytes caps request bodies for snippets and documents.
const maxBodyBytes = 1 << 20

// Searcher runs a model search.
type Searcher interface {
	Query(ctx context.Context, model, text string, page int) (*searchuc.Response, error)
}

// Indexer syncs documents into RT indexes.
type Indexer interface {
	Upsert(ctx context.Context, index string, doc db.Document) error
	Delete(ctx context.Context, index string, ids ...uint64) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search, suggestion and index-sync API.
type Server struct {
	search        Searcher
	indexer       Indexer
	aux           db.Auxiliary
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	indexer Indexer,
	aux db.Auxiliary,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		indexer: indexer,
		aux:     aux,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		compileErrorHandler,
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, ErrorCodeInvalidCriteria),
		sentinelHandler(db.ErrInvalidIdentifier, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(db.ErrEmptyDocument, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrModelNotFound, http.StatusNotFound, ErrorCodeModelNotFound),
		sentinelHandler(domain.ErrIndexingDisabled, http.StatusConflict, ErrorCodeIndexingDisabled),
		sentinelHandler(domain.ErrNotConnected, http.StatusServiceUnavailable, ErrorCodeNotConnected),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/models/{model}/search", s.Search)
	r.Get("/indexes/{index}/keywords", s.Keywords)
	r.Post("/indexes/{index}/snippets", s.Snippets)
	r.Put("/indexes/{index}/documents/{id}", s.UpsertDocument)
	r.Delete("/indexes/{index}/documents/{id}", s.DeleteDocument)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /models/{model}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var model string
	if err := bindPath(r, "model", &model); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid model")
		return
	}

	var text string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &text); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "q is required")
		return
	}

	page := 1
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "page must be an integer")
		return
	}

	resp, err := s.search.Query(r.Context(), model, text, page)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(resp))
}

// Keywords handles GET /indexes/{index}/keywords.
func (s *Server) Keywords(w http.ResponseWriter, r *http.Request) {
	var index string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid index")
		return
	}

	var text string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &text); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "q is required")
		return
	}

	var hits bool
	if err := runtime.BindQueryParameter("form", true, false, "hits", r.URL.Query(), &hits); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "hits must be a boolean")
		return
	}

	kws, err := s.aux.Keywords(r.Context(), index, text, hits)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, KeywordsResponse{Keywords: keywordsFrom(kws)})
}

// Snippets handles POST /indexes/{index}/snippets.
func (s *Server) Snippets(w http.ResponseWriter, r *http.Request) {
	var index string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid index")
		return
	}

	var req SnippetsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}
	if req.Words == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "words is required")
		return
	}

	snippets, err := s.aux.Snippets(r.Context(), index, req.Words, req.Docs, db.SnippetOptions{
		BeforeMatch: req.BeforeMatch,
		AfterMatch:  req.AfterMatch,
		Limit:       req.Limit,
		Around:      req.Around,
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	if snippets == nil {
		snippets = []string{}
	}

	writeJSON(w, http.StatusOK, SnippetsResponse{Snippets: snippets})
}

// UpsertDocument handles PUT /indexes/{index}/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	index, id, ok := bindDocumentPath(w, r)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}

	if err := s.indexer.Upsert(r.Context(), index, documentFromRequest(id, req)); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument handles DELETE /indexes/{index}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	index, id, ok := bindDocumentPath(w, r)
	if !ok {
		return
	}

	if err := s.indexer.Delete(r.Context(), index, id); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindPath(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
}

func bindDocumentPath(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	var index string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid index")
		return "", 0, false
	}
	var id uint64
	if err := bindPath(r, "id", &id); err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "id must be a positive integer")
		return "", 0, false
	}
	return index, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedSort,
		domain.ErrUnknownGroupFunc,
		domain.ErrCompile,
		domain.ErrInvalidCriteria,
		db.ErrInvalidIdentifier,
		db.ErrEmptyDocument,
		domain.ErrModelNotFound,
		domain.ErrIndexingDisabled,
		domain.ErrNotConnected,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// compileErrorHandler reports which criteria field failed to compile.
func compileErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var ce *domain.CompileError
	if !errors.As(err, &ce) {
		return false
	}
	code := ErrorCodeCompileFailed
	if errors.Is(err, domain.ErrInvalidCriteria) {
		code = ErrorCodeInvalidCriteria
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    code,
		Message: msg,
		Field:   ce.Field,
	})
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
