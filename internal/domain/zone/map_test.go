package zone_test

import (
	"errors"
	"testing"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMap(t *testing.T) {
	Convey("Given a map with overlapping zones and an ignore area", t, func() {
		m := zone.NewMap([]zone.Zone{
			square(zone.Ramp, 0, 0, 100),
			square(zone.RampLeft, 0, 0, 50),
			square(zone.Target, 200, 200, 10),
			square(zone.Ignore, 500, 500, 50),
		})

		Convey("When a detection sits inside two zones", func() {
			got := m.Membership(model.Detection{Center: model.Point{X: 10, Y: 10}})

			Convey("Then both are reported", func() {
				So(got.Sorted(), ShouldResemble, []zone.Name{zone.Ramp, zone.RampLeft})
			})
		})

		Convey("When only the bbox overlaps the target", func() {
			d := model.Detection{
				Center: model.Point{X: 195, Y: 195},
				BBox:   model.BBox{X1: 190, Y1: 190, X2: 201, Y2: 201},
			}

			Convey("Then the target is part of the membership", func() {
				So(m.Membership(d).Has(zone.Target), ShouldBeTrue)
			})
		})

		Convey("When a point is in the ignore area", func() {
			p := model.Point{X: 510, Y: 510}
			So(m.Ignored(p), ShouldBeTrue)
			So(m.Membership(model.Detection{Center: p}), ShouldBeEmpty)
		})

		Convey("When asking about an unknown zone", func() {
			So(m.Contains("nowhere", model.Point{X: 1, Y: 1}), ShouldBeFalse)
			So(m.Intersects("nowhere", model.BBox{X2: 1000, Y2: 1000}), ShouldBeFalse)
		})

		Convey("When validating", func() {
			So(m.Validate(), ShouldBeNil)
			So(m.Names(), ShouldResemble, []zone.Name{zone.Ramp, zone.RampLeft, zone.Target, zone.Ignore})
		})
	})

	Convey("Given a map with a degenerate zone", t, func() {
		m := zone.NewMap([]zone.Zone{{Name: zone.Catch, Polygon: []model.Point{{X: 1, Y: 1}}}})

		Convey("Then validation fails with ErrInvalidZone", func() {
			So(errors.Is(m.Validate(), zone.ErrInvalidZone), ShouldBeTrue)
		})
	})

	Convey("Given a custom ignore zone", t, func() {
		m := zone.NewMap([]zone.Zone{square("glare", 0, 0, 10)}, zone.WithIgnoreZone("glare"))
		So(m.Ignored(model.Point{X: 5, Y: 5}), ShouldBeTrue)
	})
}
