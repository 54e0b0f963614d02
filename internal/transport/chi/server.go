package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zenithds/zenithds/internal/domain"
	"github.com/zenithds/zenithds/internal/logger"
	collectionuc "github.com/zenithds/zenithds/internal/usecase/collection"
	healthuc "github.com/zenithds/zenithds/internal/usecase/health"
	queryuc "github.com/zenithds/zenithds/internal/usecase/query"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Pagination holds paging defaults for select responses.
type Pagination struct {
	DefaultPage     int
	DefaultPageSize int
	MaxPageSize     int
}

// Server serves the zenithds HTTP API.
type Server struct {
	query         *queryuc.Service
	collections   *collectionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	paging        Pagination
	defaultColl   string
	maxBodyBytes  int64
	metrics       http.Handler
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	query *queryuc.Service,
	collections *collectionuc.Service,
	health *healthuc.Service,
	paging Pagination,
	logger *zap.Logger,
) *Server {
	if paging.DefaultPageSize < 1 {
		paging.DefaultPageSize = 10
	}
	if paging.MaxPageSize < paging.DefaultPageSize {
		paging.MaxPageSize = paging.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		query:        query,
		collections:  collections,
		health:       health,
		logger:       logger,
		paging:       paging,
		defaultColl:  "main",
		maxBodyBytes: 32 << 20,
		metrics:      promhttp.Handler(),
	}
	s.errorHandlers = []errorHandler{
		predicateHandler,
		sentinelHandler(domain.ErrQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(fs.ErrInvalid, http.StatusBadRequest, ErrorCodeInvalidName),
		sentinelHandler(fs.ErrNotExist, http.StatusNotFound, ErrorCodeNotFound),
	}
	return s
}

// WithMaxBodyBytes limits request body size.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// WithDefaultCollection sets the collection served by /api/v1/query.
func (s *Server) WithDefaultCollection(name string) *Server {
	if name != "" {
		s.defaultColl = name
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.RenderCSV)
		r.Post("/query", s.QueryDefault)
		r.Post("/collections/{collection}/query", s.QueryCollection)
		r.Post("/collections/{collection}/files", s.CreateFile)
		r.Delete("/collections/{collection}/files/{filename}", s.DeleteFile)
	})
	s.logger.Debug("routes registered", zap.String("default_collection", s.defaultColl))
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Welcome to ZenithDS")
}

// RenderCSV handles POST /api/v1/render.
func (s *Server) RenderCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.collections.Render(r.Context(), body)
	if err != nil {
		if errors.Is(err, domain.ErrCSV) {
			writeError(w, http.StatusUnprocessableEntity, ErrorCodeBadRequest, "malformed csv")
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{Header: t.Header, Rows: t.Rows})
}

// QueryDefault handles POST /api/v1/query against the default collection.
func (s *Server) QueryDefault(w http.ResponseWriter, r *http.Request) {
	s.runQuery(w, r, s.defaultColl)
}

// QueryCollection handles POST /api/v1/collections/{collection}/query.
func (s *Server) QueryCollection(w http.ResponseWriter, r *http.Request) {
	s.runQuery(w, r, chi.URLParam(r, "collection"))
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, collection string) {
	page, perPage, err := s.bindPaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := logger.With(r.Context(), zap.String("collection", collection))
	t, err := s.query.Select(ctx, collection, req.Fields, req.Predicates)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Header:  t.Header,
		Rows:    t.Page(page, perPage),
		Page:    page,
		PerPage: perPage,
		Total:   len(t.Rows),
	})
}

// CreateFile handles POST /api/v1/collections/{collection}/files.
func (s *Server) CreateFile(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req CreateFileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.collections.Insert(r.Context(), collection, req.Filename, req.Header, req.Rows); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/collections/%s/files/%s", collection, req.Filename))
	w.WriteHeader(http.StatusCreated)
}

// DeleteFile handles DELETE /api/v1/collections/{collection}/files/{filename}.
func (s *Server) DeleteFile(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	filename := chi.URLParam(r, "filename")

	if err := s.collections.Delete(r.Context(), collection, filename); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// bindPaging reads the page and per_page query parameters.
func (s *Server) bindPaging(r *http.Request) (page, perPage int, err error) {
	var pagePtr, perPagePtr *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &pagePtr); err != nil {
		return 0, 0, fmt.Errorf("invalid page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "per_page", r.URL.Query(), &perPagePtr); err != nil {
		return 0, 0, fmt.Errorf("invalid per_page: %w", err)
	}

	page = s.paging.DefaultPage
	if pagePtr != nil {
		page = *pagePtr
	}
	perPage = s.paging.DefaultPageSize
	if perPagePtr != nil {
		perPage = *perPagePtr
	}

	if page < 0 {
		return 0, 0, errors.New("page must be non-negative")
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > s.paging.MaxPageSize {
		perPage = s.paging.MaxPageSize
	}
	return page, perPage, nil
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

// predicateHandler reports the offending predicate, which is the client's own input.
func predicateHandler(w http.ResponseWriter, err error) bool {
	var pe *domain.PredicateError
	if !errors.As(err, &pe) {
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, ErrorCodeInvalidPredicate,
		"Incorrect predicate syntax: "+pe.Error())
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Only the sentinel text reaches the client.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
