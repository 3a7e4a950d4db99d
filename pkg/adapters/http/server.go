// Package http exposes the wizard, history and admin broadcast as a JSON API.
//
// The adapter does not authenticate callers. User IDs come from the URL and
// the admin identity from the X-User-ID header, both taken at face value, so
// the handler must sit behind a trusted proxy that authenticates the caller
// and sets or strips those values. Exposed directly, anyone who can reach the
// port can act as any user, including an admin.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/broadcast"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/history"
	"github.com/aretw0/architect/pkg/input"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AdminHeader carries the caller identity on admin routes. It is trusted as is
// and must be set by an authenticating proxy.
const AdminHeader = "X-User-ID"

// DefaultRecentLimit applies when GET /users/{user}/history has no limit.
const DefaultRecentLimit = 5

const maxBodyBytes = 16 << 10

// Engine is what the HTTP adapter needs from the core.
type Engine interface {
	ports.Wizard
	Broadcast(ctx context.Context, adminID, text string) (broadcast.Report, error)
}

// Server maps HTTP requests onto Engine calls.
type Server struct {
	Engine  Engine
	Logger  *slog.Logger
	Metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics mounts h (usually promhttp) on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.Health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/sessions/{user}", func(r chi.Router) {
		r.Post("/", s.BeginSession)
		r.Delete("/", s.CancelSession)
		r.Post("/choices", s.SubmitChoice)
	})
	r.Get("/options/{step}", s.ListOptions)
	r.Get("/users/{user}/history", s.ListRecent)
	r.Get("/users/{user}/export", s.Export)
	r.Post("/admin/broadcast", s.Broadcast)

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+AdminHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChoiceRequest is the body of POST /sessions/{user}/choices.
type ChoiceRequest struct {
	Step        string `json:"step"`
	Value       string `json:"value"`
	DisplayName string `json:"display_name,omitempty"`
}

// BroadcastRequest is the body of POST /admin/broadcast.
type BroadcastRequest struct {
	Text string `json:"text"`
}

// BroadcastResponse summarizes a broadcast.
type BroadcastResponse struct {
	Sent   int               `json:"sent"`
	Failed map[string]string `json:"failed,omitempty"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// BeginSession handles POST /sessions/{user}.
func (s *Server) BeginSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	out, err := s.Engine.BeginSession(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// CancelSession handles DELETE /sessions/{user}.
func (s *Server) CancelSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	if err := s.Engine.Cancel(r.Context(), userID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitChoice handles POST /sessions/{user}/choices.
func (s *Server) SubmitChoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}

	var body ChoiceRequest
	if !s.decode(w, r, &body) {
		return
	}
	value, err := input.Sanitize(body.Value)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	displayName, err := input.Field(body.DisplayName)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	out, err := s.Engine.SubmitChoice(r.Context(), userID, displayName, body.Step, value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListOptions handles GET /options/{step}.
func (s *Server) ListOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.Engine.Options(chi.URLParam(r, "step"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "unknown_step"})
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ListRecent handles GET /users/{user}/history?limit=N.
func (s *Server) ListRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}

	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.Engine.ListRecent(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Export handles GET /users/{user}/export. The document is served as a text attachment.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	doc, err := s.Engine.ExportAll(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+history.FileName(userID)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.Logger.Error("Export write failed", "user_id", userID, "err", err)
	}
}

// Broadcast handles POST /admin/broadcast.
func (s *Server) Broadcast(w http.ResponseWriter, r *http.Request) {
	adminID, err := input.Field(r.Header.Get(AdminHeader))
	if err != nil || adminID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing " + AdminHeader + " header", Code: "unauthenticated"})
		return
	}

	var body BroadcastRequest
	if !s.decode(w, r, &body) {
		return
	}
	text, err := input.Sanitize(body.Text)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	report, err := s.Engine.Broadcast(r.Context(), adminID, text)
	if errors.Is(err, broadcast.ErrEmptyMessage) {
		s.badRequest(w, err.Error())
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := BroadcastResponse{Sent: len(report.Sent)}
	if len(report.Failed) > 0 {
		resp.Failed = make(map[string]string, len(report.Failed))
		for user, ferr := range report.Failed {
			resp.Failed[user] = ferr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := input.Field(chi.URLParam(r, "user"))
	if err != nil || userID == "" {
		s.badRequest(w, "invalid user id")
		return "", false
	}
	return userID, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.badRequest(w, "invalid request body")
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

// fail maps domain errors to statuses. Invariant violations and unknown
// failures are reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.Error("Request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// StatusFor returns the HTTP status and error code of err.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusNotFound, "no_active_session"
	case errors.Is(err, domain.ErrStepMismatch):
		return http.StatusConflict, "step_mismatch"
	case errors.Is(err, domain.ErrUnknownOption):
		return http.StatusUnprocessableEntity, "unknown_option"
	case errors.Is(err, domain.ErrNoHistory):
		return http.StatusNotFound, "no_history"
	case errors.Is(err, domain.ErrInvariantViolation):
		return http.StatusInternalServerError, "invariant_violation"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
