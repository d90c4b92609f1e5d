// Package zone holds the named polygons marked on the putting surface and
// answers containment queries against them.
package zone

import (
	"math"

	"github.com/okian/puttrack/internal/domain/model"
)

// Name identifies a zone.
type Name string

const (
	Supply      Name = "supply"
	OffMat      Name = "off_mat"
	Ramp        Name = "ramp"
	RampLeft    Name = "ramp_left"
	RampCenter  Name = "ramp_center"
	RampRight   Name = "ramp_right"
	Target      Name = "target"
	TargetTop   Name = "target_top"
	TargetRight Name = "target_right"
	TargetLow   Name = "target_low"
	TargetLeft  Name = "target_left"
	Return      Name = "return"
	Catch       Name = "catch"
	Ignore      Name = "ignore"
	Unknown     Name = "unknown"
)

var (
	// RampZones are all zones that count as "on the ramp".
	RampZones = []Name{RampLeft, RampCenter, RampRight, Ramp}
	// RampSubZones are the ramp bands in label order.
	RampSubZones = []Name{RampLeft, RampCenter, RampRight}
	// TargetZones are all zones that count as "in the target".
	TargetZones = []Name{TargetTop, TargetRight, TargetLow, TargetLeft, Target}
	// TargetQuadrants are the target sectors in label order.
	TargetQuadrants = []Name{TargetTop, TargetRight, TargetLow, TargetLeft}
	// SupplyZones are the zones a ball sits in before it is putted.
	SupplyZones = []Name{Supply, OffMat}
)

var labels = map[Name]string{
	Ramp:        "RAMP",
	RampLeft:    "LEFT",
	RampCenter:  "CENTER",
	RampRight:   "RIGHT",
	TargetTop:   "TOP",
	TargetRight: "RIGHT",
	TargetLow:   "LOW",
	TargetLeft:  "LEFT",
}

// Label returns the short label used in detail strings, UNKNOWN when the
// zone has none.
func Label(n Name) string {
	if l, ok := labels[n]; ok {
		return l
	}
	return "UNKNOWN"
}

// onEdgeEpsilon absorbs floating point noise in boundary tests.
const onEdgeEpsilon = 1e-9

// Zone is a named polygon. Polygons with fewer than three points are
// invalid and contain nothing.
type Zone struct {
	Name    Name          `json:"name"`
	Polygon []model.Point `json:"polygon"`
}

// Valid reports whether the polygon has at least three points.
func (z Zone) Valid() bool {
	return len(z.Polygon) >= 3
}

// ContainsPoint reports whether p lies inside the polygon. Points on the
// boundary are inside.
func (z Zone) ContainsPoint(p model.Point) bool {
	if !z.Valid() {
		return false
	}
	n := len(z.Polygon)
	for i := 0; i < n; i++ {
		if onSegment(p, z.Polygon[i], z.Polygon[(i+1)%n]) {
			return true
		}
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := z.Polygon[i], z.Polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// IntersectsBBox is an approximate overlap test: true when any bbox corner
// or the bbox center is inside the zone, or any zone vertex is inside the
// bbox. It is not exact polygon clipping.
func (z Zone) IntersectsBBox(b model.BBox) bool {
	if !z.Valid() {
		return false
	}
	for _, c := range b.Corners() {
		if z.ContainsPoint(c) {
			return true
		}
	}
	if z.ContainsPoint(b.Center()) {
		return true
	}
	for _, v := range z.Polygon {
		if b.Contains(v) {
			return true
		}
	}
	return false
}

func onSegment(p, a, b model.Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length == 0 {
		return math.Abs(p.X-a.X) <= onEdgeEpsilon && math.Abs(p.Y-a.Y) <= onEdgeEpsilon
	}
	if math.Abs(cross)/length > onEdgeEpsilon {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-onEdgeEpsilon && p.X <= math.Max(a.X, b.X)+onEdgeEpsilon &&
		p.Y >= math.Min(a.Y, b.Y)-onEdgeEpsilon && p.Y <= math.Max(a.Y, b.Y)+onEdgeEpsilon
}
