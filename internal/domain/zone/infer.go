package zone

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/puttrack/internal/domain/model"
)

const (
	targetSides       = 20
	targetAngleOffset = -9.0
	// DefaultOffMatExtension is how far below the supply zone the off-mat
	// area reaches, in pixels.
	DefaultOffMatExtension = 300.0
	// DefaultCatchExtension is how far above the ramp the catch area
	// reaches, in pixels.
	DefaultCatchExtension = 100.0
)

// sector indices into the inferred 20-gon, wrapping modulo targetSides.
var targetSectors = []struct {
	name       Name
	start, end int
}{
	{TargetTop, 18, 24},
	{TargetRight, 3, 9},
	{TargetLow, 8, 14},
	{TargetLeft, 13, 19},
}

// InferTargetQuadrants approximates the target with a regular 20-gon around
// its centroid and cuts four 7-point sectors out of it (center plus six arc
// vertices), rotated by -9 degrees.
func InferTargetQuadrants(target Zone) ([]Zone, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("target quadrants: %w", ErrInvalidZone)
	}
	c, err := centroid(target.Polygon)
	if err != nil {
		return nil, fmt.Errorf("target quadrants: %w", err)
	}
	var radius float64
	for _, p := range target.Polygon {
		radius += math.Hypot(p.X-c.X, p.Y-c.Y)
	}
	radius /= float64(len(target.Polygon))

	ring := make([]model.Point, targetSides)
	for i := range ring {
		a := (360.0/targetSides*float64(i) + targetAngleOffset) * math.Pi / 180
		ring[i] = model.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}

	out := make([]Zone, 0, len(targetSectors))
	for _, s := range targetSectors {
		poly := []model.Point{c}
		for i := s.start; i < s.end; i++ {
			poly = append(poly, ring[i%targetSides])
		}
		out = append(out, Zone{Name: s.name, Polygon: poly})
	}
	return out, nil
}

// InferRampBands splits a four-cornered ramp into three bands along its
// length: ramp_left nearest the top edge, ramp_center, ramp_right nearest
// the bottom edge.
func InferRampBands(ramp Zone) ([]Zone, error) {
	tl, tr, bl, br, err := quadCorners(ramp)
	if err != nil {
		return nil, fmt.Errorf("ramp bands: %w", err)
	}
	if (bl.Y+br.Y)/2-(tl.Y+tr.Y)/2 <= 0 {
		return nil, fmt.Errorf("ramp bands: non-positive length: %w", ErrInvalidZone)
	}
	l1, l2 := lerp(tl, bl, 1.0/3), lerp(tl, bl, 2.0/3)
	r1, r2 := lerp(tr, br, 1.0/3), lerp(tr, br, 2.0/3)
	return []Zone{
		{Name: RampLeft, Polygon: []model.Point{tl, tr, r1, l1}},
		{Name: RampCenter, Polygon: []model.Point{l1, r1, r2, l2}},
		{Name: RampRight, Polygon: []model.Point{l2, r2, br, bl}},
	}, nil
}

// InferOffMat extends the supply zone's side edges downwards by ext pixels.
func InferOffMat(supply Zone, ext float64) (Zone, error) {
	tl, tr, bl, br, err := quadCorners(supply)
	if err != nil {
		return Zone{}, fmt.Errorf("off mat: %w", err)
	}
	return Zone{Name: OffMat, Polygon: []model.Point{tl, tr, extend(tr, br, ext), extend(tl, bl, ext)}}, nil
}

// InferCatch extends the ramp's side edges upwards by ext pixels.
func InferCatch(ramp Zone, ext float64) (Zone, error) {
	tl, tr, bl, br, err := quadCorners(ramp)
	if err != nil {
		return Zone{}, fmt.Errorf("catch: %w", err)
	}
	return Zone{Name: Catch, Polygon: []model.Point{extend(bl, tl, ext), extend(br, tr, ext), br, bl}}, nil
}

// Complete fills in the derived zones missing from zones and returns the
// completed list along with the names that were inferred. Zones that cannot
// be inferred are left out without error.
func Complete(zones []Zone) ([]Zone, []Name) {
	have := make(map[Name]Zone, len(zones))
	for _, z := range zones {
		have[z.Name] = z
	}
	out := append([]Zone(nil), zones...)
	var inferred []Name
	add := func(zs ...Zone) {
		for _, z := range zs {
			if _, ok := have[z.Name]; ok {
				continue
			}
			have[z.Name] = z
			out = append(out, z)
			inferred = append(inferred, z.Name)
		}
	}

	if ramp, ok := have[Ramp]; ok {
		if !hasAll(have, RampSubZones) {
			if bands, err := InferRampBands(ramp); err == nil {
				add(bands...)
			}
		}
		if _, ok := have[Catch]; !ok {
			if c, err := InferCatch(ramp, DefaultCatchExtension); err == nil {
				add(c)
			}
		}
	}
	if target, ok := have[Target]; ok && !hasAll(have, TargetQuadrants) {
		if qs, err := InferTargetQuadrants(target); err == nil {
			add(qs...)
		}
	}
	if supply, ok := have[Supply]; ok {
		if _, ok := have[OffMat]; !ok {
			if z, err := InferOffMat(supply, DefaultOffMatExtension); err == nil {
				add(z)
			}
		}
	}
	return out, inferred
}

func hasAll(have map[Name]Zone, names []Name) bool {
	for _, n := range names {
		if _, ok := have[n]; !ok {
			return false
		}
	}
	return true
}

// centroid returns the area centroid of the polygon.
func centroid(poly []model.Point) (model.Point, error) {
	var a, cx, cy float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		cross := p.X*q.Y - q.X*p.Y
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	if a == 0 {
		return model.Point{}, fmt.Errorf("zero area: %w", ErrInvalidZone)
	}
	a /= 2
	return model.Point{X: cx / (6 * a), Y: cy / (6 * a)}, nil
}

// quadCorners orders a four point polygon as top-left, top-right,
// bottom-left, bottom-right in image coordinates.
func quadCorners(z Zone) (tl, tr, bl, br model.Point, err error) {
	if len(z.Polygon) != 4 {
		return tl, tr, bl, br, fmt.Errorf("%s needs 4 points, has %d: %w", z.Name, len(z.Polygon), ErrInvalidZone)
	}
	pts := append([]model.Point(nil), z.Polygon...)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Y < pts[j].Y })
	top, bottom := pts[:2], pts[2:]
	sort.SliceStable(top, func(i, j int) bool { return top[i].X < top[j].X })
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].X < bottom[j].X })
	return top[0], top[1], bottom[0], bottom[1], nil
}

func lerp(a, b model.Point, t float64) model.Point {
	return model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// extend pushes b further away from a by ext along the a->b direction.
func extend(a, b model.Point, ext float64) model.Point {
	l := math.Hypot(b.X-a.X, b.Y-a.Y)
	if l == 0 {
		return b
	}
	return lerp(a, b, 1+ext/l)
}
