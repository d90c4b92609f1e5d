// Package putlog reads and writes the durable per-session event log, one
// CSV row per classified attempt.
package putlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/okian/puttrack/internal/domain/model"
)

// Column names of the log.
const (
	ColFrameTime      = "frame_time"
	ColClassification = "classification"
	ColDetail         = "detail"
	ColBallX          = "ball_x"
	ColBallY          = "ball_y"
	ColHistory        = "transition_history"
)

// Header is the first row of every log.
var Header = []string{ColFrameTime, ColClassification, ColDetail, ColBallX, ColBallY, ColHistory}

// Writer appends events to a log. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	csv       *csv.Writer
	closer    io.Closer
	wroteHead bool
	rows      int
}

// NewWriter writes the header lazily before the first row, or on Flush.
func NewWriter(w io.Writer) *Writer {
	lw := &Writer{csv: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		lw.closer = c
	}
	return lw
}

// Create opens path for writing, creating parent directories, and writes
// the header immediately.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	w := NewWriter(f)
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Write appends one event and flushes it.
func (w *Writer) Write(ev model.PuttEvent) error {
	row, err := Encode(ev)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.header(); err != nil {
		return err
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write log row: %w", err)
	}
	w.rows++
	w.csv.Flush()
	return w.csv.Error()
}

// Rows returns how many events were written.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Flush writes the header if needed and flushes buffered rows.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.header(); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the underlying writer when it is closable.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

func (w *Writer) header() error {
	if w.wroteHead {
		return nil
	}
	if err := w.csv.Write(Header); err != nil {
		return fmt.Errorf("write log header: %w", err)
	}
	w.wroteHead = true
	return nil
}

// Encode renders an event as a log row. The frame time keeps two decimals,
// absent ball coordinates are empty and the history is a JSON array.
func Encode(ev model.PuttEvent) ([]string, error) {
	hist := ev.TransitionHistory
	if hist == nil {
		hist = []string{}
	}
	h, err := json.Marshal(hist)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	var bx, by string
	if ev.BallCenter != nil {
		bx = strconv.FormatFloat(ev.BallCenter.X, 'f', -1, 64)
		by = strconv.FormatFloat(ev.BallCenter.Y, 'f', -1, 64)
	}
	return []string{
		strconv.FormatFloat(ev.FrameTime, 'f', 2, 64),
		string(ev.Classification),
		ev.Detail,
		bx,
		by,
		string(h),
	}, nil
}
