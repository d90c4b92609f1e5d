package zone

import (
	"fmt"

	"github.com/okian/puttrack/internal/domain/model"
)

// Option applies a configuration option to a Map.
type Option func(*Map)

// WithIgnoreZone designates the zone whose detections are discarded.
func WithIgnoreZone(name Name) Option {
	return func(m *Map) {
		if name != "" {
			m.ignore = name
		}
	}
}

// WithBBoxZones sets the zones tested by bounding box overlap instead of the
// detection center.
func WithBBoxZones(names ...Name) Option {
	return func(m *Map) {
		m.bboxZones = NewMembership(names...)
	}
}

// Map is an immutable set of named zones loaded once per session.
type Map struct {
	zones     map[Name]Zone
	order     []Name
	ignore    Name
	bboxZones Membership
}

// NewMap builds a Map. Later zones with a duplicate name replace earlier ones.
func NewMap(zones []Zone, opts ...Option) *Map {
	m := &Map{
		zones:     make(map[Name]Zone, len(zones)),
		ignore:    Ignore,
		bboxZones: NewMembership(Target),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, z := range zones {
		if _, dup := m.zones[z.Name]; !dup {
			m.order = append(m.order, z.Name)
		}
		pts := make([]model.Point, len(z.Polygon))
		copy(pts, z.Polygon)
		m.zones[z.Name] = Zone{Name: z.Name, Polygon: pts}
	}
	return m
}

// Zone returns the zone registered under name.
func (m *Map) Zone(name Name) (Zone, bool) {
	z, ok := m.zones[name]
	return z, ok
}

// Names returns zone names in registration order.
func (m *Map) Names() []Name {
	out := make([]Name, len(m.order))
	copy(out, m.order)
	return out
}

// Zones returns a copy of all zones in registration order.
func (m *Map) Zones() []Zone {
	out := make([]Zone, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.zones[n])
	}
	return out
}

// Contains reports whether p is inside the named zone. Unknown names are
// treated as invalid zones.
func (m *Map) Contains(name Name, p model.Point) bool {
	z, ok := m.zones[name]
	return ok && z.ContainsPoint(p)
}

// Intersects reports whether b approximately overlaps the named zone.
func (m *Map) Intersects(name Name, b model.BBox) bool {
	z, ok := m.zones[name]
	return ok && z.IntersectsBBox(b)
}

// Ignored reports whether p falls inside the ignore zone.
func (m *Map) Ignored(p model.Point) bool {
	return m.Contains(m.ignore, p)
}

// Membership returns every zone the detection occupies. The ignore zone is
// never part of the result.
func (m *Map) Membership(d model.Detection) Membership {
	out := make(Membership)
	for _, n := range m.order {
		if n == m.ignore {
			continue
		}
		var in bool
		if m.bboxZones.Has(n) {
			in = m.Intersects(n, d.Box())
		} else {
			in = m.Contains(n, d.Center)
		}
		if in {
			out[n] = struct{}{}
		}
	}
	return out
}

// Validate checks every registered zone and returns the first invalid one.
func (m *Map) Validate() error {
	for _, n := range m.order {
		if !m.zones[n].Valid() {
			return fmt.Errorf("zone %q has %d points: %w", n, len(m.zones[n].Polygon), ErrInvalidZone)
		}
	}
	return nil
}
