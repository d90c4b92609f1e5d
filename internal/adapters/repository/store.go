// Package repository archives finished session reports and the career
// stats folded from them.
package repository

import (
	"context"
	"strings"

	"github.com/okian/puttrack/internal/domain/session"
)

// Record is one archived session.
type Record struct {
	SessionID string
	Player    string
	Report    session.Report
}

func (r Record) validate() error {
	if strings.TrimSpace(r.SessionID) == "" || strings.TrimSpace(r.Player) == "" {
		return ErrInvalidRecord
	}
	return nil
}

// Summary is the listing shape of an archived session.
type Summary struct {
	SessionID       string  `json:"session_id"`
	Player          string  `json:"player"`
	GeneratedAt     string  `json:"generated_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	TotalPutts      int     `json:"total_putts"`
	TotalMakes      int     `json:"total_makes"`
}

func summarize(r Record) Summary {
	return Summary{
		SessionID:       r.SessionID,
		Player:          r.Player,
		GeneratedAt:     r.Report.Info.GeneratedAt,
		DurationSeconds: r.Report.Info.DurationSeconds,
		TotalPutts:      r.Report.Stats.TotalPutts,
		TotalMakes:      r.Report.Stats.TotalMakes,
	}
}

// Store provides access to archived sessions and careers.
type Store interface {
	// Archive stores the session report and folds it into the player's
	// career in one step. Returns ErrDuplicate if the session is already
	// archived.
	Archive(ctx context.Context, rec Record) (session.Career, error)

	// Report returns an archived report. Returns ErrNotFound if unknown.
	Report(ctx context.Context, sessionID string) (session.Report, error)

	// Sessions lists a player's archived sessions, oldest first.
	Sessions(ctx context.Context, player string) ([]Summary, error)

	// Career returns a player's accumulated stats. Returns ErrNotFound if
	// the player has no archived session.
	Career(ctx context.Context, player string) (session.Career, error)

	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
