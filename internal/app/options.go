package service

import (
	"io"
	"time"

	"github.com/okian/puttrack/internal/adapters/repository"
	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/session"
	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithZones sets the zone map every session classifies against.
func WithZones(m *zone.Map) Option {
	return func(s *Service) {
		if m != nil {
			s.zones = m
		}
	}
}

// WithStore sets the session archive. Defaults to a MemoryStore.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithWorkerCount sets the number of queue shards and workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the frame queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many frame IDs each session remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogDir writes one putt log CSV per session into dir. Without it the
// log is kept only in memory.
func WithLogDir(dir string) Option {
	return func(s *Service) {
		s.logDir = dir
	}
}

// WithLogSink sends each session's putt log to the writer open returns.
// It takes precedence over WithLogDir. Writers that implement io.Closer
// are closed when the session is archived.
func WithLogSink(open func(SessionInfo) (io.Writer, error)) Option {
	return func(s *Service) {
		s.logSink = open
	}
}

// WithClassifierConfig sets the state machine thresholds.
func WithClassifierConfig(c classifier.Config) Option {
	return func(s *Service) {
		s.classifierCfg = c
	}
}

// WithReportOptions sets the aggregation options used for reports.
func WithReportOptions(opts ...session.Option) Option {
	return func(s *Service) {
		s.reportOpts = append([]session.Option(nil), opts...)
	}
}

// WithMaxDetections rejects frames carrying more than n detections.
func WithMaxDetections(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxDetections = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
