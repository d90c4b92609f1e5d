// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/puttrack/internal/adapters/repository"
	service "github.com/okian/puttrack/internal/app"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it;
// tests substitute a fake.
type Dependencies interface {
	StatsProvider

	StartSession(ctx context.Context, player, email string) (service.SessionInfo, error)
	SubmitFrame(ctx context.Context, sessionID string, f model.Frame) (bool, error)
	Status(ctx context.Context, sessionID string) (service.Status, error)
	EndSession(ctx context.Context, sessionID string) (session.Report, error)
	Report(ctx context.Context, sessionID string) (session.Report, error)

	Career(ctx context.Context, player string) (session.Career, error)
	Sessions(ctx context.Context, player string) ([]repository.Summary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	frameHandler   *FrameHandler
	playerHandler  *PlayerHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		sessionHandler: NewSessionHandler(deps),
		frameHandler:   NewFrameHandler(deps),
		playerHandler:  NewPlayerHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleStatus, "session_status"))
	mux.HandleFunc("POST /sessions/{id}/end", MetricsMiddleware(s.sessionHandler.HandleEnd, "session_end"))
	mux.HandleFunc("GET /sessions/{id}/report", MetricsMiddleware(s.sessionHandler.HandleReport, "session_report"))
	mux.HandleFunc("POST /sessions/{id}/frames", MetricsMiddleware(s.frameHandler.HandlePostFrames, "frames"))

	mux.HandleFunc("GET /players/{name}/career", MetricsMiddleware(s.playerHandler.HandleCareer, "career"))
	mux.HandleFunc("GET /players/{name}/sessions", MetricsMiddleware(s.playerHandler.HandleSessions, "player_sessions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and API error kinds to a status.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidFrame),
		errors.Is(err, service.ErrInvalidPlayer):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrSessionClosed):
		writeError(w, http.StatusConflict, "session_closed", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
