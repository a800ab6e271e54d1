// Package chi exposes the question-answering API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/domain"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	logpkg "github.com/Dayende-ib/guichet/internal/logger"
	"github.com/Dayende-ib/guichet/internal/metrics"
	healthuc "github.com/Dayende-ib/guichet/internal/usecase/health"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeModelUnavailable = "model_unavailable"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the HTTP API: question answering, raw retrieval, health.
// Handlers log through the request-scoped logger in the context.
type Server struct {
	answers       Answerer
	retriever     Retriever
	health        HealthChecker
	collection    string
	defaultTopK   int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	answers Answerer,
	retriever Retriever,
	health HealthChecker,
	collection string,
	defaultTopK int,
) *Server {
	s := &Server{
		answers:     answers,
		retriever:   retriever,
		health:      health,
		collection:  collection,
		defaultTopK: defaultTopK,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownFilterField, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, codeModelUnavailable),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes registers all handlers on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/generate", s.Generate)
	r.Post("/search", s.Search)
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Get("/metrics", s.Metrics)
}

// askRequest is the shared request body of /generate and /search.
type askRequest struct {
	Question     string `json:"question"`
	TopK         int    `json:"top_k"`
	EspaceFilter string `json:"espace_filter"`
	ThemeFilter  string `json:"theme_filter"`
}

type sourceItem struct {
	Titre string `json:"titre"`
	URL   string `json:"url"`
}

type generateResponse struct {
	Answer  string       `json:"answer"`
	Sources []sourceItem `json:"sources"`
}

type searchResultItem struct {
	ID          string  `json:"id"`
	Titre       string  `json:"titre"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Espace      string  `json:"espace"`
	Theme       string  `json:"theme"`
	Cout        string  `json:"cout"`
	Conditions  string  `json:"conditions,omitempty"`
	Infos       string  `json:"infos,omitempty"`
	Score       float64 `json:"score"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	req, f, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	ans, err := s.answers.Ask(r.Context(), req.Question, f, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sources := make([]sourceItem, 0, len(ans.Sources()))
	for _, src := range ans.Sources() {
		sources = append(sources, sourceItem{Titre: src.Titre, URL: src.URL})
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Answer:  ans.Text(),
		Sources: sources,
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, f, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	results, err := s.retriever.Retrieve(r.Context(), s.collection, req.Question, f, req.TopK)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, r, err)
		return
	}
	metrics.RetrievalRequestsTotal.WithLabelValues("success").Inc()
	metrics.RetrievalDocumentsReturned.Observe(float64(len(results)))

	items := make([]searchResultItem, 0, len(results))
	for _, res := range results {
		p := res.Procedure()
		items = append(items, searchResultItem{
			ID:          p.ID(),
			Titre:       p.Titre(),
			Description: p.Description(),
			URL:         p.URL(),
			Source:      p.Source(),
			Espace:      p.Espace(),
			Theme:       p.Theme(),
			Cout:        p.Cout(),
			Conditions:  p.Conditions(),
			Infos:       p.Infos(),
			Score:       res.Score(),
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// decodeAsk parses and validates the shared request body. On failure the
// error response is already written and ok is false.
func (s *Server) decodeAsk(w http.ResponseWriter, r *http.Request) (askRequest, filter.Filter, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return askRequest{}, filter.Filter{}, false
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Veuillez poser une question.")
		return askRequest{}, filter.Filter{}, false
	}
	if req.TopK < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be positive")
		return askRequest{}, filter.Filter{}, false
	}
	if req.TopK == 0 {
		req.TopK = s.defaultTopK
	}

	f, err := buildFilter(req.EspaceFilter, req.ThemeFilter)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return askRequest{}, filter.Filter{}, false
	}

	return req, f, true
}

func buildFilter(espace, theme string) (filter.Filter, error) {
	var conds []filter.Condition
	if espace != "" {
		c, err := filter.NewCondition("espace", espace)
		if err != nil {
			return filter.Filter{}, err
		}
		conds = append(conds, c)
	}
	if theme != "" {
		c, err := filter.NewCondition("theme", theme)
		if err != nil {
			return filter.Filter{}, err
		}
		conds = append(conds, c)
	}
	return filter.New(conds...)
}

// Health handles GET /health (liveness).
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready (readiness): 503 until all dependencies pass.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
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

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrModelUnavailable,
		domain.ErrStoreUnavailable,
		domain.ErrUnknownFilterField,
		domain.ErrVectorDimMismatch,
		domain.ErrInvalidDocument,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// handleDomainError logs through the request-scoped logger installed by the
// wide-event middleware, so error entries carry the request_id.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
