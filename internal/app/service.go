// Package service hosts live putting sessions: it owns the frame queue,
// the worker pool and the per-session classifiers, and archives finished
// sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/puttrack/internal/adapters/mq/queue"
	"github.com/okian/puttrack/internal/adapters/mq/worker"
	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/adapters/repository"
	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/dedupe"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
	"github.com/okian/puttrack/pkg/metrics"
)

const (
	defaultQueueSize     = 10_000
	defaultDedupeSize    = 4096
	defaultMaxDetections = 64
	stopTimeout          = 30 * time.Second
)

// Service implements the API dependencies for the tracker.
type Service struct {
	mu sync.RWMutex

	zones *zone.Map
	store repository.Store
	queue *queue.ShardedQueue
	pool  *worker.Pool

	sessions map[string]*live

	workerCount   int
	queueSize     int
	dedupeSize    int
	maxDetections int
	logDir        string
	logSink       func(SessionInfo) (io.Writer, error)
	classifierCfg classifier.Config
	reportOpts    []session.Option
	now           func() time.Time

	started bool

	framesAccepted  atomic.Int64
	framesDuplicate atomic.Int64
	framesRejected  atomic.Int64
	eventsEmitted   atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:      map[string]*live{},
		workerCount:   runtime.NumCPU(),
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		maxDetections: defaultMaxDetections,
		classifierCfg: classifier.DefaultConfig(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start creates the queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.zones == nil {
		return ErrNoZones
	}
	if err := s.zones.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.queue = queue.NewShardedQueue(queue.WithCapacity(s.queueSize), queue.WithShards(s.workerCount))
	s.pool = worker.NewPool(s.queue, worker.ProcessorFunc(s.process))
	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "putt tracker started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("zones", len(s.zones.Names())),
	)
	return nil
}

// Stop ends every live session, drains the workers and closes the store.
func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.mu.RLock()
	started := s.started
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if !started {
		return
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := s.EndSession(ctx, id); err != nil {
			s.logger.Warn(ctx, "could not end session on stop", logger.String("session_id", id), logger.Error(err))
		}
	}

	s.mu.Lock()
	s.started = false
	pool := s.pool
	s.mu.Unlock()

	// Workers take s.mu to find sessions, so the pool drains unlocked.
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	s.logger.Info(ctx, "putt tracker stopped")
}

// StartSession opens a session for player.
func (s *Service) StartSession(ctx context.Context, player, email string) (SessionInfo, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return SessionInfo{}, ErrInvalidPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return SessionInfo{}, ErrNotStarted
	}

	info := SessionInfo{
		ID:        uuid.NewString(),
		Player:    player,
		Email:     strings.TrimSpace(email),
		StartedAt: s.now().UTC(),
	}
	var w *putlog.Writer
	if s.logSink != nil {
		out, err := s.logSink(info)
		if err != nil {
			return SessionInfo{}, fmt.Errorf("start session: %w", err)
		}
		w = putlog.NewWriter(out)
	} else if s.logDir != "" {
		info.LogPath = filepath.Join(s.logDir, info.ID+".csv")
		var err error
		if w, err = putlog.Create(info.LogPath); err != nil {
			return SessionInfo{}, fmt.Errorf("start session: %w", err)
		}
	} else {
		w = putlog.NewWriter(io.Discard)
	}

	s.sessions[info.ID] = &live{
		info: info,
		cls: classifier.New(s.zones,
			classifier.WithConfig(s.classifierCfg),
			classifier.WithLogger(s.logger.Named("classifier").With(logger.String("session_id", info.ID))),
		),
		seen: dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		log:  w,
	}
	metrics.RecordSessionStarted()
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Info(ctx, "session started", logger.String("session_id", info.ID), logger.String("player", player))
	return info, nil
}

func (s *Service) lookup(id string) (*live, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	l, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return l, nil
}

func (s *Service) validateFrame(f *model.Frame) error {
	if math.IsNaN(f.FrameTime) || math.IsInf(f.FrameTime, 0) || f.FrameTime < 0 {
		return fmt.Errorf("%w: frame_time %v", ErrInvalidFrame, f.FrameTime)
	}
	if len(f.Detections) > s.maxDetections {
		return fmt.Errorf("%w: %d detections exceeds %d", ErrInvalidFrame, len(f.Detections), s.maxDetections)
	}
	for i, d := range f.Detections {
		if math.IsNaN(d.Center.X) || math.IsNaN(d.Center.Y) || math.IsNaN(d.Confidence) {
			return fmt.Errorf("%w: detection %d is not a number", ErrInvalidFrame, i)
		}
	}
	f.FrameID = strings.TrimSpace(f.FrameID)
	return nil
}

// SubmitFrame queues a frame for classification. A frame whose ID the
// session has already seen is acknowledged as a duplicate and dropped.
// Frames without an ID are never deduplicated.
func (s *Service) SubmitFrame(ctx context.Context, sessionID string, f model.Frame) (duplicate bool, err error) {
	if err := s.validateFrame(&f); err != nil {
		s.reject("invalid")
		return false, err
	}
	l, err := s.lookup(sessionID)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, fmt.Errorf("session %s: %w", sessionID, ErrSessionClosed)
	}
	keyed := f.FrameID != ""
	if keyed && l.seen.SeenAndRecord(ctx, f.FrameID) {
		s.framesDuplicate.Add(1)
		metrics.RecordFrameRejected("duplicate")
		return true, nil
	}
	if err := s.queue.Enqueue(ctx, queue.Job{SessionID: sessionID, Frame: f}); err != nil {
		if keyed {
			l.seen.Unrecord(ctx, f.FrameID)
		}
		if errors.Is(err, queue.ErrFull) {
			s.reject("backpressure")
			return false, ErrBackpressure
		}
		return false, fmt.Errorf("submit frame: %w", err)
	}
	s.framesAccepted.Add(1)
	return false, nil
}

func (s *Service) reject(reason string) {
	s.framesRejected.Add(1)
	metrics.RecordFrameRejected(reason)
}

// process is the worker entry point for one queued frame.
func (s *Service) process(ctx context.Context, j queue.Job) error {
	s.mu.RLock()
	l, ok := s.sessions[j.SessionID]
	s.mu.RUnlock()
	if !ok {
		s.reject("unknown_session")
		return fmt.Errorf("session %s: %w", j.SessionID, ErrSessionNotFound)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	start := time.Now()
	res, err := l.apply(ctx, j.Frame)
	metrics.RecordClassifyLatency(float64(time.Since(start).Microseconds()) / 1000)
	switch {
	case err == nil:
	case errors.Is(err, ErrPuttLog):
		// The event is already in the session; only the file copy is short.
		metrics.RecordErrorByComponent("service", "putt_log")
		s.logger.Warn(ctx, "putt log write failed",
			logger.String("session_id", j.SessionID), logger.Error(err))
	case errors.Is(err, classifier.ErrOutOfOrder):
		s.reject("out_of_order")
		return err
	case errors.Is(err, classifier.ErrInvalidFrameTime):
		s.reject("invalid")
		return err
	default:
		return err
	}
	metrics.RecordFrameProcessed()
	if res.Event == nil {
		return nil
	}

	s.eventsEmitted.Add(1)
	metrics.RecordPuttEvent(string(res.Event.Classification), string(res.Outcome))
	if res.AttemptDuration > 0 {
		metrics.RecordAttemptDuration(res.AttemptDuration)
	}
	s.logger.Info(ctx, "putt",
		logger.String("session_id", j.SessionID),
		logger.String("classification", string(res.Event.Classification)),
		logger.String("detail", res.Event.Detail),
		logger.Float64("frame_time", res.Event.FrameTime),
	)
	return nil
}

// Status returns the live view of a session, or the final counters of an
// archived one.
func (s *Service) Status(ctx context.Context, sessionID string) (Status, error) {
	l, err := s.lookup(sessionID)
	if err == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.status(), nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return Status{}, err
	}
	r, aerr := s.store.Report(ctx, sessionID)
	if aerr != nil {
		return Status{}, archiveErr(sessionID, aerr)
	}
	return archivedStatus(sessionID, r), nil
}

// EndSession stops accepting frames, waits for queued frames to be
// classified, then archives the report and folds it into the career.
func (s *Service) EndSession(ctx context.Context, sessionID string) (session.Report, error) {
	l, err := s.lookup(sessionID)
	if err != nil {
		return session.Report{}, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return session.Report{}, fmt.Errorf("session %s: %w", sessionID, ErrSessionClosed)
	}
	l.closed = true
	l.mu.Unlock()

	// Until the archive succeeds the session stays live so the caller can
	// retry.
	reopen := func() {
		l.mu.Lock()
		l.closed = false
		l.mu.Unlock()
	}

	if err := s.queue.Drain(ctx, sessionID); err != nil {
		reopen()
		return session.Report{}, fmt.Errorf("drain session %s: %w", sessionID, err)
	}

	l.mu.Lock()
	report, err := s.aggregate(l)
	l.mu.Unlock()
	if err != nil {
		reopen()
		return session.Report{}, err
	}

	career, err := s.store.Archive(ctx, repository.Record{SessionID: sessionID, Player: l.info.Player, Report: report})
	if err != nil {
		reopen()
		return session.Report{}, fmt.Errorf("archive session %s: %w", sessionID, err)
	}

	l.mu.Lock()
	closeErr := l.log.Close()
	l.mu.Unlock()
	if closeErr != nil {
		s.logger.Warn(ctx, "closing putt log", logger.String("session_id", sessionID), logger.Error(closeErr))
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.RecordSessionEnded()
	metrics.UpdateActiveSessions(active)

	s.logger.Info(ctx, "session ended",
		logger.String("session_id", sessionID),
		logger.Int("putts", report.Stats.TotalPutts),
		logger.Int("makes", report.Stats.TotalMakes),
		logger.Int("career_sessions", career.Sessions),
	)
	return report, nil
}

// aggregate builds the report of a live session. Callers hold l.mu.
func (s *Service) aggregate(l *live) (session.Report, error) {
	opts := append([]session.Option{session.WithInfo(session.Info{
		SessionID:   l.info.ID,
		PlayerName:  l.info.Player,
		PlayerEmail: l.info.Email,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	})}, s.reportOpts...)
	r, err := session.Aggregate(l.events, opts...)
	if err != nil {
		return session.Report{}, fmt.Errorf("aggregate session %s: %w", l.info.ID, err)
	}
	return r, nil
}

// Report aggregates a live session's events so far, or returns the
// archived report.
func (s *Service) Report(ctx context.Context, sessionID string) (session.Report, error) {
	l, err := s.lookup(sessionID)
	if err == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		return s.aggregate(l)
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return session.Report{}, err
	}
	r, err := s.store.Report(ctx, sessionID)
	if err != nil {
		return session.Report{}, archiveErr(sessionID, err)
	}
	return r, nil
}

// Career returns the accumulated stats of player.
func (s *Service) Career(ctx context.Context, player string) (session.Career, error) {
	c, err := s.store.Career(ctx, player)
	if errors.Is(err, repository.ErrNotFound) {
		return session.Career{}, fmt.Errorf("%s: %w", player, ErrPlayerNotFound)
	}
	if err != nil {
		return session.Career{}, err
	}
	return c, nil
}

// Sessions lists the archived sessions of player.
func (s *Service) Sessions(ctx context.Context, player string) ([]repository.Summary, error) {
	return s.store.Sessions(ctx, player)
}

func archiveErr(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"activeSessions":  len(s.sessions),
		"framesAccepted":  s.framesAccepted.Load(),
		"framesDuplicate": s.framesDuplicate.Load(),
		"framesRejected":  s.framesRejected.Load(),
		"eventsEmitted":   s.eventsEmitted.Load(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
	}
	return stats
}
