package simulate

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
)

const syntheticConfidence = 0.9

// Layout holds one ball position per zone a synthetic putt visits.
type Layout struct {
	Supply model.Point
	Ramp   model.Point
	Target model.Point
	Catch  model.Point
	Return model.Point
}

type role struct {
	dst     *model.Point
	zone    zone.Name
	inAny   []zone.Name
	exclude []zone.Name
}

// NewLayout picks a point inside each zone a putt passes through so that
// each point belongs to no zone that would trigger a different rule.
func NewLayout(m *zone.Map) (Layout, error) {
	var l Layout
	ramp := zone.RampZones
	roles := []role{
		{&l.Supply, zone.Supply, []zone.Name{zone.Supply},
			append([]zone.Name{zone.Return, zone.Catch, zone.Target}, ramp...)},
		{&l.Ramp, zone.Ramp, ramp,
			append([]zone.Name{zone.Return, zone.Catch, zone.Target}, zone.SupplyZones...)},
		{&l.Target, zone.Target, []zone.Name{zone.Target},
			append([]zone.Name{zone.Return, zone.Catch}, zone.SupplyZones...)},
		{&l.Catch, zone.Catch, []zone.Name{zone.Catch},
			append([]zone.Name{zone.Return, zone.Target}, zone.SupplyZones...)},
		{&l.Return, zone.Return, []zone.Name{zone.Return},
			append([]zone.Name{zone.Catch, zone.Target}, zone.SupplyZones...)},
	}
	for _, r := range roles {
		p, err := pick(m, r)
		if err != nil {
			return Layout{}, err
		}
		*r.dst = p
	}
	return l, nil
}

func pick(m *zone.Map, r role) (model.Point, error) {
	z, ok := m.Zone(r.zone)
	if !ok || !z.Valid() {
		return model.Point{}, fmt.Errorf("%w: no %s zone", ErrLayout, r.zone)
	}
	for _, p := range candidates(z.Polygon) {
		if m.Ignored(p) {
			continue
		}
		mem := m.Membership(model.Detection{Center: p, Confidence: syntheticConfidence})
		if mem.HasAny(r.inAny...) && !mem.HasAny(r.exclude...) {
			return p, nil
		}
	}
	return model.Point{}, fmt.Errorf("%w: %s overlaps other zones everywhere tried", ErrLayout, r.zone)
}

// candidates yields the vertex mean followed by points halfway from it to
// each vertex and to each edge midpoint.
func candidates(poly []model.Point) []model.Point {
	var c model.Point
	for _, p := range poly {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(poly))
	c.Y /= float64(len(poly))
	mid := func(a, b model.Point) model.Point { return model.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2} }

	out := []model.Point{c}
	for i, p := range poly {
		out = append(out, mid(c, p), mid(c, mid(p, poly[(i+1)%len(poly)])))
	}
	return out
}

// Frames returns the frames of one putt starting at t0.
func (l Layout) Frames(o Outcome, t0 float64, idPrefix string) []model.Frame {
	type step struct {
		dt float64
		p  *model.Point
	}
	var steps []step
	switch o {
	case Make:
		steps = []step{{0, &l.Supply}, {0.1, &l.Ramp}, {0.4, &l.Target}, {0.6, &l.Return}, {0.7, nil}}
	case CatchMiss:
		steps = []step{{0, &l.Supply}, {0.1, &l.Ramp}, {0.4, &l.Catch}, {0.6, &l.Return}, {0.7, nil}}
	case ReturnMiss:
		steps = []step{{0, &l.Supply}, {0.1, &l.Ramp}, {0.3, nil}, {0.6, &l.Supply}, {0.7, nil}}
	}
	frames := make([]model.Frame, 0, len(steps))
	for i, s := range steps {
		f := model.Frame{FrameID: fmt.Sprintf("%s-%d", idPrefix, i), FrameTime: t0 + s.dt}
		if s.p != nil {
			f.Detections = []model.Detection{{Center: *s.p, Confidence: syntheticConfidence}}
		}
		frames = append(frames, f)
	}
	return frames
}

// Generate scripts one session. The outcome sequence is a pure function of
// seed and index.
func (l Layout) Generate(player string, putts int, makeRate float64, seed, index uint64) Script {
	rng := rand.New(rand.NewPCG(seed, index))
	s := Script{Player: player}
	for i := range putts {
		o := Make
		if rng.Float64() >= makeRate {
			o = CatchMiss
			if rng.IntN(2) == 1 {
				o = ReturnMiss
			}
		}
		s.Outcomes = append(s.Outcomes, o)
		s.Frames = append(s.Frames, l.Frames(o, float64(i)*puttSeconds, fmt.Sprintf("p%04d", i))...)
	}
	return s
}
