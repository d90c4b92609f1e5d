package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/dedupe"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
)

// SessionInfo identifies a session.
type SessionInfo struct {
	ID        string    `json:"session_id"`
	Player    string    `json:"player_name"`
	Email     string    `json:"player_email,omitempty"`
	StartedAt time.Time `json:"started_at"`
	LogPath   string    `json:"log_path,omitempty"`
}

// Status is the live view of a session.
type Status struct {
	Session       SessionInfo      `json:"session"`
	Active        bool             `json:"active"`
	State         model.State      `json:"state,omitempty"`
	Tally         session.Tally    `json:"tally"`
	LastEvent     *model.PuttEvent `json:"last_event,omitempty"`
	Frames        int              `json:"frames"`
	LastFrameTime float64          `json:"last_frame_time"`
}

// live is a session accepting frames. mu serializes the classifier and
// orders submission against EndSession.
type live struct {
	mu     sync.Mutex
	info   SessionInfo
	cls    *classifier.Classifier
	seen   dedupe.Deduper
	log    *putlog.Writer
	events []model.PuttEvent
	tally  session.Tally
	last   *model.PuttEvent

	frames    int
	lastFrame float64
	closed    bool
}

// apply runs one frame through the classifier. An error wrapping
// ErrPuttLog means the event was recorded but not written to the log.
// Callers hold mu.
func (l *live) apply(ctx context.Context, f model.Frame) (classifier.Result, error) {
	res, err := l.cls.Process(ctx, f.FrameTime, f.Detections)
	if err != nil {
		return res, err
	}
	l.frames++
	l.lastFrame = f.FrameTime
	if res.Event == nil {
		return res, nil
	}
	ev := *res.Event
	l.events = append(l.events, ev)
	l.tally.Record(ev.Classification)
	l.last = &ev
	if err := l.log.Write(ev); err != nil {
		return res, fmt.Errorf("%w: %w", ErrPuttLog, err)
	}
	return res, nil
}

// status builds the live view. Callers hold mu.
func (l *live) status() Status {
	st := Status{
		Session:       l.info,
		Active:        !l.closed,
		State:         l.cls.State(),
		Tally:         l.tally,
		Frames:        l.frames,
		LastFrameTime: l.lastFrame,
	}
	if l.last != nil {
		ev := *l.last
		st.LastEvent = &ev
	}
	return st
}

// archivedStatus rebuilds the counters of a finished session from its
// report.
func archivedStatus(id string, r session.Report) Status {
	var t session.Tally
	for _, p := range r.Putts {
		t.Record(model.Classification(p.Classification))
	}
	st := Status{
		Session: SessionInfo{ID: id, Player: r.Info.PlayerName, Email: r.Info.PlayerEmail},
		Tally:   t,
	}
	if n := len(r.Putts); n > 0 {
		p := r.Putts[n-1]
		st.LastEvent = &model.PuttEvent{
			FrameTime:      p.Time,
			Classification: model.Classification(p.Classification),
			Detail:         p.Detail,
		}
		st.LastFrameTime = p.Time
	}
	return st
}
