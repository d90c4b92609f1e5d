package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/puttrack/internal/domain/model"
)

// maxFrameBody bounds the body of a frame submission.
const maxFrameBody = 4 << 20

// framesRequest is the batch form of POST /sessions/{id}/frames. A bare
// frame object is accepted as a batch of one.
type framesRequest struct {
	Frames []model.Frame `json:"frames"`
}

type ackResponse struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
}

// FrameHandler serves frame submission.
type FrameHandler struct {
	deps Dependencies
}

// NewFrameHandler creates a new frame handler.
func NewFrameHandler(deps Dependencies) *FrameHandler {
	return &FrameHandler{deps: deps}
}

func decodeFrames(r io.Reader) ([]model.Frame, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxFrameBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxFrameBody {
		return nil, fmt.Errorf("body exceeds %d bytes", maxFrameBody)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["frames"]; ok {
		var req framesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		if len(req.Frames) == 0 {
			return nil, errors.New("no frames")
		}
		return req.Frames, nil
	}
	if _, ok := probe["frame_time"]; !ok {
		return nil, errors.New("missing frame_time")
	}
	var f model.Frame
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, err
	}
	return []model.Frame{f}, nil
}

// HandlePostFrames handles POST /sessions/{id}/frames requests. Frames are
// submitted in order; the first failure stops the batch and the response
// reports how many frames were taken before it.
func (h *FrameHandler) HandlePostFrames(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frames"
	frames, err := decodeFrames(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id := r.PathValue("id")
	var ack ackResponse
	for i, f := range frames {
		dup, err := h.deps.SubmitFrame(r.Context(), id, f)
		if err != nil {
			writeServiceError(w, op, fmt.Errorf("frame %d (accepted %d): %w", i, ack.Accepted, err))
			return
		}
		if dup {
			ack.Duplicates++
			continue
		}
		ack.Accepted++
	}
	writeJSON(w, http.StatusAccepted, ack)
}
