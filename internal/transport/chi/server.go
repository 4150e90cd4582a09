package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/index"
	"github.com/kailas-cloud/rigel/internal/catalog"
	logpkg "github.com/kailas-cloud/rigel/internal/logger"
	healthuc "github.com/kailas-cloud/rigel/internal/usecase/health"
	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the read-only query API.
type Server struct {
	query         *queryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(query *queryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		query:  query,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(catalog.ErrSchemaNotFound, http.StatusNotFound, CodeSchemaNotFound),
		sentinelHandler(queryuc.ErrNotFound, http.StatusNotFound, CodeItemNotFound),
		sentinelHandler(catalog.ErrUnknownField, http.StatusBadRequest, CodeUnknownField),
		sentinelHandler(queryuc.ErrInvalidFilter, http.StatusBadRequest, CodeInvalidFilter),
		sentinelHandler(rigel.ErrInvalidArgument, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(rigel.ErrTypeMismatch, http.StatusUnprocessableEntity, CodeTypeMismatch),
		sentinelHandler(rigel.ErrResultTooLarge, http.StatusUnprocessableEntity, CodeResultTooLarge),
		sentinelHandler(index.ErrIndexNotFound, http.StatusBadGateway, CodeIndexNotFound),
		sentinelHandler(index.ErrUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Route("/{schema}", func(r chi.Router) {
			r.Use(schemaLogger)
			r.Get("/items", s.ListItems)
			r.Get("/items/{id}", s.GetItem)
			r.Get("/groups/{field}", s.GroupItems)
			r.Get("/join", s.JoinItems)
		})
	})
}

// schemaLogger adds the {schema} parameter to the request logger.
func schemaLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logpkg.Enrich(r.Context(), zap.String("schema", chi.URLParam(r, "schema")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListSchemas handles GET /v1/schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, _ *http.Request) {
	infos := s.query.Schemas()
	items := make([]SchemaResponse, len(infos))
	for i, info := range infos {
		items[i] = schemaToResponse(info)
	}
	writeJSON(w, http.StatusOK, SchemaListResponse{Items: items})
}

// GetItem handles GET /v1/schemas/{schema}/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.query.Get(r.Context(), chi.URLParam(r, "schema"), chi.URLParam(r, "id"), forceParam(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// ListItems handles GET /v1/schemas/{schema}/items.
// With one or more id parameters it is a batch identifier lookup; otherwise a listing.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	schema := chi.URLParam(r, "schema")
	q := r.URL.Query()

	if ids, ok := q["id"]; ok {
		found, err := s.query.GetMany(r.Context(), schema, ids, forceParam(r))
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		resp := make(map[string]*ItemResponse, len(found))
		for id, op := range found {
			if item, ok := op.Get(); ok {
				ir := itemToResponse(item)
				resp[id] = &ir
			} else {
				resp[id] = nil
			}
		}
		writeJSON(w, http.StatusOK, ItemLookupResponse{Items: resp})
		return
	}

	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	items, err := s.query.List(r.Context(), schema, queryuc.ListParams{
		Filters: q["filter"],
		Query:   q.Get("q"),
		Limit:   limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsToList(items))
}

// GroupItems handles GET /v1/schemas/{schema}/groups/{field}.
func (s *Server) GroupItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	perGroup, ok := intParam(w, r, "per_group")
	if !ok {
		return
	}

	groups, err := s.query.Group(r.Context(), chi.URLParam(r, "schema"), queryuc.GroupParams{
		Field:    chi.URLParam(r, "field"),
		PerGroup: perGroup,
		Filters:  q["filter"],
		Query:    q.Get("q"),
		Limit:    limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := GroupListResponse{Groups: make([]GroupResponse, len(groups))}
	for i, g := range groups {
		resp.Groups[i] = GroupResponse{Key: g.Key, Items: itemsToList(g.Items).Items}
	}
	writeJSON(w, http.StatusOK, resp)
}

// JoinItems handles GET /v1/schemas/{schema}/join.
func (s *Server) JoinItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "from and to are required")
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	items, err := s.query.Join(r.Context(), chi.URLParam(r, "schema"), queryuc.JoinParams{
		From:        q.Get("from"),
		To:          q.Get("to"),
		FromFilters: q["from_filter"],
		Filters:     q["filter"],
		Limit:       limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsToList(items))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
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

func forceParam(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return force
}

// intParam reads an optional integer query parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
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
		catalog.ErrSchemaNotFound,
		catalog.ErrUnknownField,
		queryuc.ErrNotFound,
		rigel.ErrInvalidArgument,
		rigel.ErrTypeMismatch,
		rigel.ErrResultTooLarge,
		index.ErrIndexNotFound,
		index.ErrUnavailable,
	}
	// filter errors carry the offending expression, which the caller sent
	if errors.Is(err, queryuc.ErrInvalidFilter) {
		return err.Error()
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
