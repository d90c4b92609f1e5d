// Package replay runs a recorded frame stream through a classifier
// offline. Frames are JSON objects, one after another (JSON lines).
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
)

// ErrDecode marks a frame stream that could not be parsed.
var ErrDecode = errors.New("decode frame")

// FrameError describes a frame the classifier rejected. Index counts
// frames from 0.
type FrameError struct {
	Index     int
	FrameTime float64
	Err       error
}

func (e FrameError) Error() string {
	return fmt.Sprintf("frame %d at %.2f: %v", e.Index, e.FrameTime, e.Err)
}

func (e FrameError) Unwrap() error { return e.Err }

// Result is the outcome of a replay.
type Result struct {
	Frames   int
	Events   []model.PuttEvent
	Rejected []FrameError
	Final    model.State
}

// Option configures a replay.
type Option func(*options)

type options struct {
	cls []classifier.Option
	log *putlog.Writer
}

// WithClassifier passes options to the classifier.
func WithClassifier(opts ...classifier.Option) Option {
	return func(o *options) { o.cls = append(o.cls, opts...) }
}

// WithLog appends every emitted event to w.
func WithLog(w *putlog.Writer) Option {
	return func(o *options) { o.log = w }
}

// WithLogger traces classification through l.
func WithLogger(l logger.Logger) Option {
	return WithClassifier(classifier.WithLogger(l))
}

// Run classifies every frame read from r. Frames the classifier rejects,
// such as out-of-order ones, are collected and skipped. A decode error or
// a log write error stops the replay.
func Run(ctx context.Context, zones *zone.Map, r io.Reader, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := classifier.New(zones, o.cls...)
	dec := json.NewDecoder(r)

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var f model.Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%w %d: %v", ErrDecode, res.Frames, err)
		}
		idx := res.Frames
		res.Frames++

		out, err := c.Process(ctx, f.FrameTime, f.Detections)
		if err != nil {
			res.Rejected = append(res.Rejected, FrameError{Index: idx, FrameTime: f.FrameTime, Err: err})
			continue
		}
		if out.Event == nil {
			continue
		}
		res.Events = append(res.Events, *out.Event)
		if o.log != nil {
			if err := o.log.Write(*out.Event); err != nil {
				return res, fmt.Errorf("write log: %w", err)
			}
		}
	}
	res.Final = c.State()
	if o.log != nil {
		if err := o.log.Flush(); err != nil {
			return res, fmt.Errorf("flush log: %w", err)
		}
	}
	return res, nil
}
