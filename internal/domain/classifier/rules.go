package classifier

import (
	"fmt"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
)

// Outcome names the kind of event a rule emits.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeQuick   Outcome = "QUICK_ATTEMPT"
	OutcomeReturn  Outcome = "RETURN"
	OutcomeMake    Outcome = "HOLE"
	OutcomeCatch   Outcome = "CATCH"
	OutcomeTimeout Outcome = "TIMEOUT"
)

// Snapshot is everything a rule guard may look at for one frame.
type Snapshot struct {
	State        model.State
	Now          float64
	Current      zone.Membership
	Previous     zone.Membership
	Attempt      Attempt
	PrevReturned bool
	SupplyRecent bool
	Config       Config
}

// Rule is one row of the transition table. Rules are evaluated in order
// and at most one fires per frame.
type Rule struct {
	Name    string
	From    model.State
	To      model.State
	Outcome Outcome
	Guard   func(Snapshot) bool
}

// Rules is the ordered transition table.
var Rules = []Rule{
	{
		Name: "quick_attempt", From: model.StateWaiting, To: model.StateWaiting, Outcome: OutcomeQuick,
		Guard: func(s Snapshot) bool {
			return s.Current.HasAny(zone.RampZones...) && !s.Previous.HasAny(zone.RampZones...) &&
				s.Current.Has(zone.OffMat) && !s.PrevReturned && !s.Current.Has(zone.Return)
		},
	},
	{
		Name: "attempt_start", From: model.StateWaiting, To: model.StateInProgress, Outcome: OutcomeNone,
		Guard: func(s Snapshot) bool {
			return s.SupplyRecent && s.Current.HasAny(zone.RampZones...)
		},
	},
	{
		Name: "miss_return", From: model.StateInProgress, To: model.StateWaiting, Outcome: OutcomeReturn,
		Guard: func(s Snapshot) bool {
			return s.Current.HasAny(zone.SupplyZones...) && s.Now-s.Attempt.Start > s.Config.ReturnDelay
		},
	},
	{
		Name: "make", From: model.StateInProgress, To: model.StateAwaitingReturn, Outcome: OutcomeMake,
		Guard: func(s Snapshot) bool {
			return s.Attempt.EnteredTarget && s.Current.Has(zone.Return) && !s.Attempt.CrossedCatch
		},
	},
	{
		Name: "miss_catch", From: model.StateInProgress, To: model.StateAwaitingReturn, Outcome: OutcomeCatch,
		Guard: func(s Snapshot) bool {
			return s.Current.Has(zone.Return) && s.Attempt.CrossedCatch
		},
	},
	{
		Name: "miss_timeout", From: model.StateInProgress, To: model.StateWaiting, Outcome: OutcomeTimeout,
		Guard: func(s Snapshot) bool {
			return s.Attempt.RampExited && !s.Current.Has(zone.Return) &&
				s.Now-s.Attempt.RampExit > s.Config.RampExitTimeout
		},
	},
	{
		Name: "return_cleared", From: model.StateAwaitingReturn, To: model.StateWaiting, Outcome: OutcomeNone,
		Guard: func(s Snapshot) bool {
			return s.Previous.Has(zone.Return) && !s.Current.Has(zone.Return)
		},
	},
}

// Match returns the first rule that fires for s.
func Match(s Snapshot) (Rule, bool) {
	for _, r := range Rules {
		if r.From == s.State && r.Guard(s) {
			return r, true
		}
	}
	return Rule{}, false
}

// Classification returns the event classification for the outcome.
func (o Outcome) Classification() model.Classification {
	if o == OutcomeMake {
		return model.Make
	}
	return model.Miss
}

// ConfirmsReturn reports whether the outcome proves the ball came back, so
// a following ramp entry is not a quick attempt.
func (o Outcome) ConfirmsReturn() bool {
	switch o {
	case OutcomeReturn, OutcomeMake, OutcomeCatch:
		return true
	default:
		return false
	}
}

// Detail formats the detail string for an outcome of attempt a.
func (o Outcome) Detail(a Attempt) string {
	switch o {
	case OutcomeQuick:
		return "MISS - " + string(OutcomeQuick)
	case OutcomeMake:
		return fmt.Sprintf("MAKE - %s: %s - %s", o, zone.Label(a.FirstTarget), zone.Label(a.FirstRamp))
	default:
		return fmt.Sprintf("MISS - %s: %s - %s", o, zone.Label(a.FirstRamp), zone.Label(a.LastRamp))
	}
}
