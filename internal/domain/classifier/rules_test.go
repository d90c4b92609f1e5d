package classifier_test

import (
	"testing"

	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
	. "github.com/smartystreets/goconvey/convey"
)

func snapshot(state model.State, now float64, cur ...zone.Name) classifier.Snapshot {
	return classifier.Snapshot{
		State:    state,
		Now:      now,
		Current:  zone.NewMembership(cur...),
		Previous: zone.Membership{},
		Config:   classifier.DefaultConfig(),
	}
}

func TestRules(t *testing.T) {
	Convey("Given synthetic snapshots", t, func() {
		Convey("When waiting with an outstanding ball entering the ramp off the mat", func() {
			s := snapshot(model.StateWaiting, 1, zone.Ramp, zone.OffMat)
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "quick_attempt")
			So(r.Outcome.Detail(s.Attempt), ShouldEqual, "MISS - QUICK_ATTEMPT")
		})

		Convey("When the previous ball is confirmed returned", func() {
			s := snapshot(model.StateWaiting, 1, zone.Ramp, zone.OffMat)
			s.PrevReturned = true
			_, ok := classifier.Match(s)
			So(ok, ShouldBeFalse)
		})

		Convey("When the ball reaches the ramp shortly after the supply", func() {
			s := snapshot(model.StateWaiting, 1, zone.RampRight)
			s.PrevReturned = true
			s.SupplyRecent = true
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "attempt_start")
			So(r.To, ShouldEqual, model.StateInProgress)
		})

		Convey("When the ball is back on the mat right after the start", func() {
			s := snapshot(model.StateInProgress, 1.2, zone.Supply)
			s.Attempt.Start = 1
			_, ok := classifier.Match(s)
			So(ok, ShouldBeFalse)

			s.Now = 1.3
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "miss_return")
		})

		Convey("When the ball is in the return after the target", func() {
			s := snapshot(model.StateInProgress, 2, zone.Return)
			s.Attempt = classifier.Attempt{Start: 1, EnteredTarget: true, FirstTarget: zone.TargetLeft, FirstRamp: zone.RampCenter}
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "make")
			So(r.Outcome.Classification(), ShouldEqual, model.Make)
			So(r.Outcome.Detail(s.Attempt), ShouldEqual, "MAKE - HOLE: LEFT - CENTER")

			Convey("And the catch was touched", func() {
				s.Attempt.CrossedCatch = true
				r, _ := classifier.Match(s)
				So(r.Name, ShouldEqual, "miss_catch")
			})
		})

		Convey("When the return is reached without target or catch", func() {
			s := snapshot(model.StateInProgress, 2, zone.Return)
			s.Attempt = classifier.Attempt{Start: 1, RampExited: true, RampExit: 1.5}
			_, ok := classifier.Match(s)
			So(ok, ShouldBeFalse)
		})

		Convey("When the ramp exit is older than the timeout", func() {
			s := snapshot(model.StateInProgress, 5, zone.Catch)
			s.Attempt = classifier.Attempt{Start: 1, RampExited: true, RampExit: 1.5, FirstRamp: zone.RampLeft, LastRamp: zone.RampRight}
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "miss_timeout")
			So(r.Outcome.ConfirmsReturn(), ShouldBeFalse)
			So(r.Outcome.Detail(s.Attempt), ShouldEqual, "MISS - TIMEOUT: LEFT - RIGHT")
		})

		Convey("When the returned ball leaves the return", func() {
			s := snapshot(model.StateAwaitingReturn, 3)
			s.Previous = zone.NewMembership(zone.Return)
			r, ok := classifier.Match(s)
			So(ok, ShouldBeTrue)
			So(r.Name, ShouldEqual, "return_cleared")
			So(r.To, ShouldEqual, model.StateWaiting)
		})

		Convey("When awaiting the return with the ball on the ramp", func() {
			s := snapshot(model.StateAwaitingReturn, 3, zone.Ramp)
			s.SupplyRecent = true
			_, ok := classifier.Match(s)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given the outcome kinds", t, func() {
		So(classifier.OutcomeMake.ConfirmsReturn(), ShouldBeTrue)
		So(classifier.OutcomeReturn.ConfirmsReturn(), ShouldBeTrue)
		So(classifier.OutcomeCatch.ConfirmsReturn(), ShouldBeTrue)
		So(classifier.OutcomeQuick.ConfirmsReturn(), ShouldBeFalse)
		So(classifier.OutcomeTimeout.Classification(), ShouldEqual, model.Miss)
		So(classifier.OutcomeReturn.Detail(classifier.Attempt{}), ShouldEqual, "MISS - RETURN: UNKNOWN - UNKNOWN")
	})
}
