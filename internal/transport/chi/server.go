package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	domusage "github.com/kailas-cloud/kidprint/internal/domain/usage"
	"github.com/kailas-cloud/kidprint/internal/metrics"
	healthuc "github.com/kailas-cloud/kidprint/internal/usecase/health"
	usageuc "github.com/kailas-cloud/kidprint/internal/usecase/usage"
)

// maxBodyBytes caps admin request bodies.
const maxBodyBytes = 4 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// LimitSetter changes the daily print limit at runtime.
type LimitSetter interface {
	SetDailyLimit(n int) error
	DailyLimit() int
}

// TermManager edits the content gate's term sets.
type TermManager interface {
	AddBlockedTerm(term string) error
	AddSafeTerm(term string) error
	Suggestions() []string
}

// Config holds the admin router settings.
type Config struct {
	APIKeys           []string
	RequestsPerMinute int
}

// Server serves the kiosk admin API.
type Server struct {
	usage         *usageuc.Service
	health        *healthuc.Service
	limits        LimitSetter
	terms         TermManager
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an admin API server.
func NewServer(
	usage *usageuc.Service,
	health *healthuc.Service,
	limits LimitSetter,
	terms TermManager,
	logger *zap.Logger,
) *Server {
	s := &Server{
		usage:  usage,
		health: health,
		limits: limits,
		terms:  terms,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidDay, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyTerm, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(RateLimitMiddleware(cfg.RequestsPerMinute))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/usage", s.GetUsage)
	r.Get("/usage/{day}", s.GetDayUsage)
	r.Put("/limit", s.SetLimit)
	r.Post("/terms/blocked", s.AddBlockedTerm)
	r.Post("/terms/safe", s.AddSafeTerm)
	r.Get("/suggestions", s.Suggestions)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeNotFound         errorCode = "not_found"
	codeUnauthorized     errorCode = "unauthorized"
	codeRateLimited      errorCode = "rate_limited"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type budgetResponse struct {
	PrintsLimit     int    `json:"prints_limit"`
	PrintsRemaining int    `json:"prints_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        string `json:"resets_at"`
}

type usageResponse struct {
	Day         string            `json:"day"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Prints      int               `json:"prints"`
	Budget      budgetResponse    `json:"budget"`
	History     []domusage.Record `json:"history"`
}

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

type limitRequest struct {
	DailyLimit *int `json:"daily_limit"`
}

type limitResponse struct {
	DailyLimit int `json:"daily_limit"`
}

type termRequest struct {
	Term string `json:"term"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report := s.usage.GetReport(r.Context())
	writeJSON(w, http.StatusOK, usageToResponse(&report))
}

// GetDayUsage handles GET /usage/{day}.
func (s *Server) GetDayUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.GetDayReport(r.Context(), chi.URLParam(r, "day"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(&report))
}

// SetLimit handles PUT /limit.
func (s *Server) SetLimit(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DailyLimit == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "daily_limit is required")
		return
	}

	if err := s.limits.SetDailyLimit(*req.DailyLimit); err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.logger.Info("Daily limit changed", zap.Int("daily_limit", *req.DailyLimit))
	writeJSON(w, http.StatusOK, limitResponse{DailyLimit: s.limits.DailyLimit()})
}

// AddBlockedTerm handles POST /terms/blocked.
func (s *Server) AddBlockedTerm(w http.ResponseWriter, r *http.Request) {
	s.addTerm(w, r, "blocked", s.terms.AddBlockedTerm)
}

// AddSafeTerm handles POST /terms/safe.
func (s *Server) AddSafeTerm(w http.ResponseWriter, r *http.Request) {
	s.addTerm(w, r, "safe", s.terms.AddSafeTerm)
}

func (s *Server) addTerm(w http.ResponseWriter, r *http.Request, set string, add func(string) error) {
	var req termRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := add(req.Term); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.logger.Info("Content term added", zap.String("set", set), zap.String("term", req.Term))
	w.WriteHeader(http.StatusNoContent)
}

// Suggestions handles GET /suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: s.terms.Suggestions()})
}

func usageToResponse(report *domusage.Report) usageResponse {
	b := report.Budget()
	history := report.History()
	if history == nil {
		history = []domusage.Record{}
	}
	return usageResponse{
		Day:         report.Day(),
		PeriodStart: millisToISO(report.PeriodStart()),
		PeriodEnd:   millisToISO(report.PeriodEnd()),
		Prints:      report.Prints(),
		Budget: budgetResponse{
			PrintsLimit:     b.PrintsLimit(),
			PrintsRemaining: b.PrintsRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        millisToISO(b.ResetsAt()),
		},
		History: history,
	}
}

func millisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidDay,
		domain.ErrInvalidLimit,
		domain.ErrEmptyTerm,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
