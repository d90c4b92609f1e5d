package classifier

import (
	"fmt"

	"github.com/okian/puttrack/internal/domain/zone"
)

// Attempt is the per-attempt tracking state. It is created when an attempt
// starts and cleared by every outcome.
type Attempt struct {
	Start         float64
	RampEntry     float64
	FirstEntry    map[zone.Name]float64
	FirstRamp     zone.Name
	LastRamp      zone.Name
	FirstTarget   zone.Name
	EnteredTarget bool
	CrossedCatch  bool
	RampExited    bool
	RampExit      float64
	History       []string
}

func newAttempt(now float64, m zone.Membership) Attempt {
	a := Attempt{
		Start:      now,
		RampEntry:  now,
		FirstEntry: make(map[zone.Name]float64),
	}
	ramp := rampZone(m)
	a.FirstRamp, a.LastRamp = ramp, ramp
	for _, n := range m.Sorted() {
		a.FirstEntry[n] = now
	}
	a.History = append(a.History, entered(ramp, now))
	return a
}

// track folds one in-progress frame into the attempt.
func (a *Attempt) track(now float64, cur, prev zone.Membership) {
	in, out := cur.Diff(prev)
	for _, n := range in {
		if _, seen := a.FirstEntry[n]; !seen {
			a.FirstEntry[n] = now
		}
		a.History = append(a.History, entered(n, now))
	}
	for _, n := range out {
		a.History = append(a.History, exited(n, now))
	}

	if cur.HasAny(zone.TargetZones...) {
		a.EnteredTarget = true
		if a.FirstTarget == "" {
			if q, ok := cur.First(zone.TargetQuadrants...); ok {
				a.FirstTarget = q
			}
		}
	}
	if cur.Has(zone.Catch) {
		a.CrossedCatch = true
	}

	inRamp := cur.HasAny(zone.RampZones...)
	if inRamp {
		a.LastRamp = rampZone(cur)
		if a.FirstRamp == "" {
			a.FirstRamp = a.LastRamp
		}
		a.RampExited = false
		a.RampExit = 0
	} else if prev.HasAny(zone.RampZones...) {
		a.RampExited = true
		a.RampExit = now
	}
}

// rampZone picks the most specific ramp zone in m.
func rampZone(m zone.Membership) zone.Name {
	if n, ok := m.First(zone.RampSubZones...); ok {
		return n
	}
	if m.Has(zone.Ramp) {
		return zone.Ramp
	}
	return ""
}

func entered(n zone.Name, now float64) string {
	return fmt.Sprintf("Entered %s at %.2fs", n, now)
}

func exited(n zone.Name, now float64) string {
	return fmt.Sprintf("Exited %s at %.2fs", n, now)
}
