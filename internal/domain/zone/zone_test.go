package zone_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
	. "github.com/smartystreets/goconvey/convey"
)

func square(name zone.Name, x, y, size float64) zone.Zone {
	return zone.Zone{Name: name, Polygon: []model.Point{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
	}}
}

func TestContainsPoint(t *testing.T) {
	Convey("Given a square zone", t, func() {
		z := square(zone.Supply, 0, 0, 10)

		Convey("When the point is strictly inside", func() {
			So(z.ContainsPoint(model.Point{X: 5, Y: 5}), ShouldBeTrue)
		})

		Convey("When the point is on an edge or a vertex", func() {
			So(z.ContainsPoint(model.Point{X: 0, Y: 5}), ShouldBeTrue)
			So(z.ContainsPoint(model.Point{X: 10, Y: 10}), ShouldBeTrue)
			So(z.ContainsPoint(model.Point{X: 3, Y: 0}), ShouldBeTrue)
		})

		Convey("When the point is outside", func() {
			So(z.ContainsPoint(model.Point{X: 10.5, Y: 5}), ShouldBeFalse)
			So(z.ContainsPoint(model.Point{X: -1, Y: -1}), ShouldBeFalse)
		})
	})

	Convey("Given a concave zone", t, func() {
		z := zone.Zone{Name: zone.Ramp, Polygon: []model.Point{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 5, Y: 5}, {X: 0, Y: 10},
		}}

		Convey("Then the notch is outside", func() {
			So(z.ContainsPoint(model.Point{X: 5, Y: 8}), ShouldBeFalse)
			So(z.ContainsPoint(model.Point{X: 1, Y: 8}), ShouldBeTrue)
		})
	})

	Convey("Given a zone with fewer than three points", t, func() {
		z := zone.Zone{Name: zone.Catch, Polygon: []model.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}

		Convey("Then it never contains anything", func() {
			So(z.Valid(), ShouldBeFalse)
			So(z.ContainsPoint(model.Point{X: 0, Y: 0}), ShouldBeFalse)
			So(z.IntersectsBBox(model.BBox{X1: -5, Y1: -5, X2: 15, Y2: 15}), ShouldBeFalse)
		})
	})
}

func TestIntersectsBBox(t *testing.T) {
	Convey("Given a small target zone", t, func() {
		z := square(zone.Target, 10, 10, 4)

		Convey("When a bbox corner lies inside", func() {
			So(z.IntersectsBBox(model.BBox{X1: 0, Y1: 0, X2: 11, Y2: 11}), ShouldBeTrue)
		})

		Convey("When the bbox swallows the zone", func() {
			So(z.IntersectsBBox(model.BBox{X1: 0, Y1: 0, X2: 30, Y2: 30}), ShouldBeTrue)
		})

		Convey("When the bbox is far away", func() {
			So(z.IntersectsBBox(model.BBox{X1: 20, Y1: 20, X2: 25, Y2: 25}), ShouldBeFalse)
		})
	})
}

func TestContainsPointProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	z := square(zone.Ramp, 0, 0, 100)

	properties.Property("every boundary point is inside", prop.ForAll(
		func(t float64, side int) bool {
			var p model.Point
			switch side {
			case 0:
				p = model.Point{X: t * 100, Y: 0}
			case 1:
				p = model.Point{X: 100, Y: t * 100}
			case 2:
				p = model.Point{X: t * 100, Y: 100}
			default:
				p = model.Point{X: 0, Y: t * 100}
			}
			return z.ContainsPoint(p)
		},
		gen.Float64Range(0, 1),
		gen.IntRange(0, 3),
	))

	properties.Property("containment is deterministic", prop.ForAll(
		func(x, y float64) bool {
			p := model.Point{X: x, Y: y}
			return z.ContainsPoint(p) == z.ContainsPoint(p)
		},
		gen.Float64Range(-50, 150),
		gen.Float64Range(-50, 150),
	))

	properties.Property("points beyond the right edge are outside", prop.ForAll(
		func(dx, y float64) bool {
			return !z.ContainsPoint(model.Point{X: 100 + dx, Y: y})
		},
		gen.Float64Range(0.001, 50),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}

func TestMembership(t *testing.T) {
	Convey("Given two membership sets", t, func() {
		prev := zone.NewMembership(zone.Ramp, zone.RampLeft)
		cur := zone.NewMembership(zone.Ramp, zone.RampCenter)

		Convey("When diffing them", func() {
			entered, exited := cur.Diff(prev)

			Convey("Then only the changed zones are reported", func() {
				So(entered, ShouldResemble, []zone.Name{zone.RampCenter})
				So(exited, ShouldResemble, []zone.Name{zone.RampLeft})
			})
		})

		Convey("When querying an empty set", func() {
			var empty zone.Membership
			So(empty.Has(zone.Ramp), ShouldBeFalse)
			So(empty.HasAny(zone.RampZones...), ShouldBeFalse)
			So(empty.Sorted(), ShouldBeEmpty)
		})

		Convey("When looking up the first of several names", func() {
			n, ok := cur.First(zone.RampSubZones...)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, zone.RampCenter)
		})
	})
}

func TestLabel(t *testing.T) {
	Convey("Given zone names", t, func() {
		So(zone.Label(zone.RampLeft), ShouldEqual, "LEFT")
		So(zone.Label(zone.Ramp), ShouldEqual, "RAMP")
		So(zone.Label(zone.TargetLow), ShouldEqual, "LOW")
		So(zone.Label(""), ShouldEqual, "UNKNOWN")
		So(zone.Label(zone.Catch), ShouldEqual, "UNKNOWN")
	})
}
