package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/okian/puttrack/internal/domain/session"
	"github.com/okian/puttrack/pkg/logger"
	"github.com/okian/puttrack/pkg/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

const defaultBusyTimeoutMs = 5000

// SQLiteStore is a Store backed by a sqlite file.
type SQLiteStore struct {
	db            *sql.DB
	log           logger.Logger
	busyTimeoutMs int
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{log: logger.NewNop(), busyTimeoutMs: defaultBusyTimeoutMs}
	for _, opt := range opts {
		opt(s)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, s.busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Archives are small and writes are rare; one connection keeps sqlite
	// free of lock contention.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s.db = db
	if err := s.migrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "session archive ready", logger.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	m.Log = migrateLogger{log: s.log}
	// m is not closed: closing it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}
	return nil
}

// Version returns the applied schema version.
func (s *SQLiteStore) Version() (uint, error) {
	var v uint
	err := s.db.QueryRow(`SELECT version FROM schema_migrations LIMIT 1`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	return v, nil
}

// Archive implements Store.
func (s *SQLiteStore) Archive(ctx context.Context, rec Record) (session.Career, error) {
	if err := rec.validate(); err != nil {
		return session.Career{}, err
	}
	defer observe("archive", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return session.Career{}, fmt.Errorf("archive %s: %w", rec.SessionID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, rec.SessionID).Scan(&exists)
	switch {
	case err == nil:
		return session.Career{}, fmt.Errorf("archive %s: %w", rec.SessionID, ErrDuplicate)
	case !errors.Is(err, sql.ErrNoRows):
		return session.Career{}, fmt.Errorf("archive %s: %w", rec.SessionID, err)
	}

	career, err := loadCareer(ctx, tx, rec.Player)
	if errors.Is(err, ErrNotFound) {
		career = session.NewCareer(rec.Player)
	} else if err != nil {
		return session.Career{}, err
	}
	career.Add(rec.Report)

	report, err := json.Marshal(rec.Report)
	if err != nil {
		return session.Career{}, fmt.Errorf("encode report: %w", err)
	}
	careerJSON, err := json.Marshal(career)
	if err != nil {
		return session.Career{}, fmt.Errorf("encode career: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, player, generated_at, duration_seconds, total_putts, total_makes, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Player, rec.Report.Info.GeneratedAt, rec.Report.Info.DurationSeconds,
		rec.Report.Stats.TotalPutts, rec.Report.Stats.TotalMakes, string(report))
	if err != nil {
		return session.Career{}, fmt.Errorf("insert session: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO careers (player, career_json, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player) DO UPDATE SET career_json = excluded.career_json, updated_at = CURRENT_TIMESTAMP`,
		rec.Player, string(careerJSON))
	if err != nil {
		return session.Career{}, fmt.Errorf("upsert career: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return session.Career{}, fmt.Errorf("archive %s: %w", rec.SessionID, err)
	}
	return career, nil
}

// Report implements Store.
func (s *SQLiteStore) Report(ctx context.Context, sessionID string) (session.Report, error) {
	defer observe("report", time.Now())
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Report{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return session.Report{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	var r session.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return session.Report{}, fmt.Errorf("decode report %s: %w", sessionID, err)
	}
	return r, nil
}

// Sessions implements Store.
func (s *SQLiteStore) Sessions(ctx context.Context, player string) ([]Summary, error) {
	defer observe("sessions", time.Now())
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, player, generated_at, duration_seconds, total_putts, total_makes
		FROM sessions WHERE player = ? ORDER BY created_at, rowid`, player)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.SessionID, &sm.Player, &sm.GeneratedAt, &sm.DurationSeconds,
			&sm.TotalPutts, &sm.TotalMakes); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// Career implements Store.
func (s *SQLiteStore) Career(ctx context.Context, player string) (session.Career, error) {
	defer observe("career", time.Now())
	return loadCareer(ctx, s.db, player)
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadCareer(ctx context.Context, q queryer, player string) (session.Career, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT career_json FROM careers WHERE player = ?`, player).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Career{}, fmt.Errorf("career %s: %w", player, ErrNotFound)
	}
	if err != nil {
		return session.Career{}, fmt.Errorf("career %s: %w", player, err)
	}
	var c session.Career
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return session.Career{}, fmt.Errorf("decode career %s: %w", player, err)
	}
	return c, nil
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

type migrateLogger struct {
	log logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(context.Background(), fmt.Sprintf("migrate: "+format, v...))
}

func (l migrateLogger) Verbose() bool { return false }
