package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// startRequest is the body of POST /sessions.
type startRequest struct {
	Player string `json:"player_name"`
	Email  string `json:"player_email"`
}

func (s startRequest) validate() error {
	if strings.TrimSpace(s.Player) == "" {
		return errors.New("missing player_name")
	}
	return nil
}

// SessionHandler serves the session lifecycle routes.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleStart handles POST /sessions requests.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	info, err := h.deps.StartSession(r.Context(), req.Player, req.Email)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleStatus handles GET /sessions/{id} requests.
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.session_status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleEnd handles POST /sessions/{id}/end requests.
func (h *SessionHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.EndSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.end_session", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleReport handles GET /sessions/{id}/report requests. The flattened
// table is returned as CSV when format=csv.
func (h *SessionHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_report"
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("format must be json or csv")))
		return
	}
	rep, err := h.deps.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if format != "csv" {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+r.PathValue("id")+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = rep.Table().WriteCSV(w)
}
