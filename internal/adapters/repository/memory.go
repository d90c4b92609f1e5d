package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/okian/puttrack/internal/domain/session"
)

// MemoryStore is a Store that keeps everything in process memory. It is
// used when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	reports  map[string]session.Report
	byPlayer map[string][]Summary
	careers  map[string]session.Career
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:  map[string]session.Report{},
		byPlayer: map[string][]Summary{},
		careers:  map[string]session.Career{},
	}
}

// Archive implements Store.
func (s *MemoryStore) Archive(_ context.Context, rec Record) (session.Career, error) {
	if err := rec.validate(); err != nil {
		return session.Career{}, err
	}
	defer observe("archive", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[rec.SessionID]; ok {
		return session.Career{}, fmt.Errorf("archive %s: %w", rec.SessionID, ErrDuplicate)
	}
	career, ok := s.careers[rec.Player]
	if !ok {
		career = session.NewCareer(rec.Player)
	} else if career, ok = cloneCareer(career); !ok {
		return session.Career{}, fmt.Errorf("archive %s: copy career", rec.SessionID)
	}
	career.Add(rec.Report)
	s.reports[rec.SessionID] = rec.Report
	s.byPlayer[rec.Player] = append(s.byPlayer[rec.Player], summarize(rec))
	s.careers[rec.Player] = career
	out, _ := cloneCareer(career)
	return out, nil
}

// Report implements Store.
func (s *MemoryStore) Report(_ context.Context, sessionID string) (session.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[sessionID]
	if !ok {
		return session.Report{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return r, nil
}

// Sessions implements Store.
func (s *MemoryStore) Sessions(_ context.Context, player string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Summary{}, s.byPlayer[player]...), nil
}

// Career implements Store.
func (s *MemoryStore) Career(_ context.Context, player string) (session.Career, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.careers[player]
	if !ok {
		return session.Career{}, fmt.Errorf("career %s: %w", player, ErrNotFound)
	}
	out, _ := cloneCareer(c)
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// cloneCareer deep-copies c so callers never share its maps.
func cloneCareer(c session.Career) (session.Career, bool) {
	raw, err := json.Marshal(c)
	if err != nil {
		return session.Career{}, false
	}
	var out session.Career
	if err := json.Unmarshal(raw, &out); err != nil {
		return session.Career{}, false
	}
	return out, true
}
