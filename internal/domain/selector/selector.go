// Package selector reduces the detections of a frame to at most one
// primary ball.
package selector

import (
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
)

// Priorities maps a lifecycle state to its ordered zone preference.
type Priorities map[model.State][]zone.Name

var waitingPriority = []zone.Name{
	zone.Supply, zone.OffMat,
	zone.RampLeft, zone.RampCenter, zone.RampRight, zone.Ramp,
	zone.Catch,
	zone.TargetTop, zone.TargetRight, zone.TargetLow, zone.TargetLeft, zone.Target,
	zone.Return,
}

var activePriority = []zone.Name{
	zone.TargetTop, zone.TargetRight, zone.TargetLow, zone.TargetLeft, zone.Target,
	zone.Return, zone.Catch,
	zone.RampLeft, zone.RampCenter, zone.RampRight, zone.Ramp,
	zone.Supply, zone.OffMat,
}

// DefaultPriorities prefers balls waiting to be putted while idle and balls
// on their way to the target while an attempt is live.
func DefaultPriorities() Priorities {
	return Priorities{
		model.StateWaiting:        waitingPriority,
		model.StateInProgress:     activePriority,
		model.StateAwaitingReturn: activePriority,
	}
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithPriorities replaces the priority table.
func WithPriorities(p Priorities) Option {
	return func(s *Selector) {
		if len(p) > 0 {
			s.priorities = p
		}
	}
}

// Result is the outcome of selection for one frame.
type Result struct {
	Primary    *model.Detection
	Zone       zone.Name
	Membership zone.Membership
}

// Found reports whether a primary detection was chosen.
func (r Result) Found() bool {
	return r.Primary != nil
}

// Selector picks the decision-relevant detection of a frame.
type Selector struct {
	zones      *zone.Map
	priorities Priorities
}

// New creates a Selector bound to a zone map.
func New(zones *zone.Map, opts ...Option) *Selector {
	s := &Selector{zones: zones, priorities: DefaultPriorities()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type candidate struct {
	det        model.Detection
	membership zone.Membership
	rank       int
}

// Select discards ignored detections, ranks the rest by the best priority
// zone they occupy and breaks ties on confidence, then input order. When no
// detection occupies a priority zone the most confident one wins with zone
// "unknown".
func (s *Selector) Select(state model.State, detections []model.Detection) Result {
	order := s.priorities[state]
	if order == nil {
		order = s.priorities[model.StateInProgress]
	}

	var cands []candidate
	for _, d := range detections {
		if s.zones.Ignored(d.Center) {
			continue
		}
		m := s.zones.Membership(d)
		cands = append(cands, candidate{det: d, membership: m, rank: rankOf(order, m)})
	}
	if len(cands) == 0 {
		return Result{Membership: zone.Membership{}}
	}

	best := -1
	for i, c := range cands {
		if c.rank < 0 {
			continue
		}
		if best < 0 || c.rank < cands[best].rank ||
			(c.rank == cands[best].rank && c.det.Confidence > cands[best].det.Confidence) {
			best = i
		}
	}
	if best >= 0 {
		c := cands[best]
		return Result{Primary: &c.det, Zone: order[c.rank], Membership: c.membership}
	}

	best = 0
	for i, c := range cands {
		if c.det.Confidence > cands[best].det.Confidence {
			best = i
		}
	}
	c := cands[best]
	return Result{Primary: &c.det, Zone: zone.Unknown, Membership: c.membership}
}

func rankOf(order []zone.Name, m zone.Membership) int {
	for i, n := range order {
		if m.Has(n) {
			return i
		}
	}
	return -1
}
