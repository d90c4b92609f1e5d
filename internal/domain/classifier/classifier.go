// Package classifier implements the per-frame attempt state machine. It
// consumes the primary detection of each frame and emits a PuttEvent when
// an attempt is decided.
package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/selector"
	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
)

// Result is the per-frame output of the classifier.
type Result struct {
	FrameTime  float64
	State      model.State
	Rule       string
	Outcome    Outcome
	Event      *model.PuttEvent
	Primary    *model.Detection
	Zone       zone.Name
	Membership zone.Membership

	// AttemptDuration is the frame time from attempt start to the outcome,
	// zero when no attempt was in progress.
	AttemptDuration float64
}

// BallCenter returns the primary detection's center, if any.
func (r Result) BallCenter() *model.Point {
	if r.Primary == nil {
		return nil
	}
	p := r.Primary.Center
	return &p
}

// Classifier is single-threaded: callers must serialize Process calls for
// one session.
type Classifier struct {
	cfg      Config
	selector *selector.Selector
	logger   logger.Logger

	state        model.State
	attempt      Attempt
	prev         zone.Membership
	prevReturned bool
	sawSupply    bool
	lastSupply   float64
	started      bool
	lastFrame    float64
}

// New creates a classifier over the given zone map.
func New(zones *zone.Map, opts ...Option) *Classifier {
	c := &Classifier{
		cfg:    DefaultConfig(),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.selector = selector.New(zones)
	c.reset()
	return c
}

// Config returns the active thresholds.
func (c *Classifier) Config() Config { return c.cfg }

// State returns the current lifecycle state.
func (c *Classifier) State() model.State { return c.state }

// Attempt returns a copy of the live attempt state.
func (c *Classifier) Attempt() Attempt {
	a := c.attempt
	a.History = append([]string(nil), c.attempt.History...)
	return a
}

// Reset returns the classifier to its initial state.
func (c *Classifier) Reset() { c.reset() }

func (c *Classifier) reset() {
	c.state = model.StateWaiting
	c.attempt = Attempt{}
	c.prev = zone.Membership{}
	c.prevReturned = true
	c.sawSupply = false
	c.lastSupply = 0
	c.started = false
	c.lastFrame = 0
}

// Process advances the state machine by one frame. Frames without
// detections still advance the timers. A frame older than the previous one
// is rejected with ErrOutOfOrder and changes nothing.
func (c *Classifier) Process(ctx context.Context, frameTime float64, detections []model.Detection) (Result, error) {
	if math.IsNaN(frameTime) || math.IsInf(frameTime, 0) || frameTime < 0 {
		return Result{}, fmt.Errorf("process %v: %w", frameTime, ErrInvalidFrameTime)
	}
	if c.started && frameTime < c.lastFrame {
		return Result{}, fmt.Errorf("process %.3f after %.3f: %w", frameTime, c.lastFrame, ErrOutOfOrder)
	}

	sel := c.selector.Select(c.state, detections)
	cur := sel.Membership
	if cur == nil {
		cur = zone.Membership{}
	}

	if cur.Has(zone.Supply) {
		c.sawSupply = true
		c.lastSupply = frameTime
	}
	if c.state == model.StateInProgress {
		c.attempt.track(frameTime, cur, c.prev)
	}

	snap := Snapshot{
		State:        c.state,
		Now:          frameTime,
		Current:      cur,
		Previous:     c.prev,
		Attempt:      c.attempt,
		PrevReturned: c.prevReturned,
		SupplyRecent: c.sawSupply && frameTime-c.lastSupply <= c.cfg.SupplyGrace,
		Config:       c.cfg,
	}

	res := Result{
		FrameTime:  frameTime,
		Primary:    sel.Primary,
		Zone:       sel.Zone,
		Membership: cur,
	}
	if rule, ok := Match(snap); ok {
		res.Rule = rule.Name
		res.Outcome = rule.Outcome
		if rule.Outcome != OutcomeNone && c.state == model.StateInProgress {
			res.AttemptDuration = frameTime - c.attempt.Start
		}
		res.Event = c.fire(ctx, rule, snap, res.BallCenter())
	}

	c.prev = cur
	c.lastFrame = frameTime
	c.started = true
	res.State = c.state
	return res, nil
}

func (c *Classifier) fire(ctx context.Context, r Rule, s Snapshot, center *model.Point) *model.PuttEvent {
	from := c.state
	c.state = r.To
	defer c.logger.Debug(ctx, "transition",
		logger.String("rule", r.Name),
		logger.String("from", string(from)),
		logger.String("to", string(r.To)),
		logger.Float64("frame_time", s.Now),
	)

	if r.Outcome == OutcomeNone {
		if r.To == model.StateInProgress {
			c.attempt = newAttempt(s.Now, s.Current)
			c.prevReturned = false
		}
		return nil
	}

	ev := &model.PuttEvent{
		FrameTime:         s.Now,
		Classification:    r.Outcome.Classification(),
		Detail:            r.Outcome.Detail(c.attempt),
		BallCenter:        center,
		TransitionHistory: append([]string(nil), c.attempt.History...),
	}
	c.prevReturned = r.Outcome.ConfirmsReturn()
	c.attempt = Attempt{}
	c.sawSupply = false
	return ev
}
