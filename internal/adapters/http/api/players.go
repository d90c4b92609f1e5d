package api

import (
	"net/http"
	"strings"

	"github.com/okian/puttrack/internal/adapters/repository"
)

// PlayerHandler serves per-player read models.
type PlayerHandler struct {
	deps Dependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps Dependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

func playerName(r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.PathValue("name"))
	return name, name != ""
}

// HandleCareer handles GET /players/{name}/career requests.
func (h *PlayerHandler) HandleCareer(w http.ResponseWriter, r *http.Request) {
	const op = "api.career"
	name, ok := playerName(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	c, err := h.deps.Career(r.Context(), name)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSessions handles GET /players/{name}/sessions requests.
func (h *PlayerHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_sessions"
	name, ok := playerName(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	list, err := h.deps.Sessions(r.Context(), name)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if list == nil {
		list = []repository.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}
