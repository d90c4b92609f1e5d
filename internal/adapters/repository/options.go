package repository

import "github.com/okian/puttrack/pkg/logger"

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for migration output.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBusyTimeout sets the sqlite busy timeout in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(s *SQLiteStore) {
		if ms > 0 {
			s.busyTimeoutMs = ms
		}
	}
}
