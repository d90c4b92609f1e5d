package putlog_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriter(t *testing.T) {
	Convey("Given a log writer", t, func() {
		var buf bytes.Buffer
		w := putlog.NewWriter(&buf)

		Convey("When writing an event with a ball and history", func() {
			err := w.Write(model.PuttEvent{
				FrameTime:         12.346,
				Classification:    model.Make,
				Detail:            "MAKE - HOLE: TOP - LEFT",
				BallCenter:        &model.Point{X: 101, Y: 55.5},
				TransitionHistory: []string{"Entered ramp_left at 11.90s"},
			})
			So(err, ShouldBeNil)

			Convey("Then the header precedes a formatted row", func() {
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(lines[0], ShouldEqual, "frame_time,classification,detail,ball_x,ball_y,transition_history")
				So(lines[1], ShouldEqual, `12.35,MAKE,MAKE - HOLE: TOP - LEFT,101,55.5,"[""Entered ramp_left at 11.90s""]"`)
				So(w.Rows(), ShouldEqual, 1)
			})
		})

		Convey("When writing an event without a ball", func() {
			So(w.Write(model.PuttEvent{FrameTime: 3, Classification: model.Miss, Detail: "MISS - QUICK_ATTEMPT"}), ShouldBeNil)

			Convey("Then the ball fields are empty and the history is an empty array", func() {
				So(buf.String(), ShouldContainSubstring, "3.00,MISS,MISS - QUICK_ATTEMPT,,,[]")
			})
		})

		Convey("When only flushing", func() {
			So(w.Flush(), ShouldBeNil)
			So(w.Flush(), ShouldBeNil)
			So(strings.Count(buf.String(), "frame_time"), ShouldEqual, 1)
		})
	})
}

func TestReader(t *testing.T) {
	Convey("Given a log with good, skipped and bad rows", t, func() {
		in := strings.Join([]string{
			"frame_time,classification,detail,ball_x,ball_y,transition_history",
			`1.00,MAKE,MAKE - HOLE: TOP - LEFT,10,20,"[""Entered ramp_left at 0.50s""]"`,
			"1.50,,,,,",
			"abc,MISS,MISS - CATCH: LEFT - LEFT,,,[]",
			"2.00,MISS,MISS - CATCH: LEFT - LEFT,,,[]",
			"1.80,MAKE,MAKE - HOLE: LOW - LEFT,,,[]",
			"3.00,DRAW,whatever,,,[]",
			"4.00,MISS,MISS - TIMEOUT: LEFT - LEFT,5,,[]",
			"5.00,miss,MISS - RETURN: LEFT - LEFT,,,not-json",
			"6.00,make,MAKE - HOLE: LEFT - RIGHT,,,",
		}, "\n")

		Convey("When reading it", func() {
			res, err := putlog.Read(strings.NewReader(in))
			So(err, ShouldBeNil)

			Convey("Then valid rows become events in order", func() {
				So(len(res.Events), ShouldEqual, 3)
				So(res.Events[0].FrameTime, ShouldEqual, 1.0)
				So(*res.Events[0].BallCenter, ShouldResemble, model.Point{X: 10, Y: 20})
				So(res.Events[0].TransitionHistory, ShouldResemble, []string{"Entered ramp_left at 0.50s"})
				So(res.Events[1].BallCenter, ShouldBeNil)
				So(res.Events[1].TransitionHistory, ShouldBeNil)
				So(res.Events[2].Classification, ShouldEqual, model.Make)
				So(res.Skipped, ShouldEqual, 1)
			})

			Convey("Then bad rows are reported with their line numbers", func() {
				So(len(res.Errors), ShouldEqual, 5)
				So(res.Errors[0].Line, ShouldEqual, 4)
				So(errors.Is(res.Errors[0], putlog.ErrMalformedRow), ShouldBeTrue)
				So(errors.Is(res.Errors[1], putlog.ErrOutOfOrder), ShouldBeTrue)
				So(res.Errors[1].Line, ShouldEqual, 6)
				So(errors.Is(res.Errors[2], putlog.ErrMalformedRow), ShouldBeTrue)
				So(errors.Is(res.Errors[3], putlog.ErrMalformedRow), ShouldBeTrue)
				So(errors.Is(res.Errors[4], putlog.ErrMalformedRow), ShouldBeTrue)
			})
		})
	})

	Convey("Given a log with legacy column names", t, func() {
		in := "current_frame_time,classification,detailed_classification,ball_x,ball_y,transition_history\n" +
			"0.50,MISS,MISS - QUICK_ATTEMPT,,,[]\n"
		res, err := putlog.Read(strings.NewReader(in))
		So(err, ShouldBeNil)
		So(len(res.Events), ShouldEqual, 1)
		So(res.Events[0].Detail, ShouldEqual, "MISS - QUICK_ATTEMPT")
	})

	Convey("Given a log missing the classification column", t, func() {
		_, err := putlog.Read(strings.NewReader("frame_time,detail\n1,x\n"))
		So(errors.Is(err, putlog.ErrMissingColumn), ShouldBeTrue)
	})

	Convey("Given an empty input", t, func() {
		res, err := putlog.Read(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(res.Events, ShouldBeEmpty)
	})
}

func TestFile(t *testing.T) {
	Convey("Given a log file written through Create", t, func() {
		path := filepath.Join(t.TempDir(), "logs", "session.csv")
		w, err := putlog.Create(path)
		So(err, ShouldBeNil)
		So(w.Write(model.PuttEvent{FrameTime: 1, Classification: model.Make, Detail: "MAKE - HOLE: TOP - LEFT"}), ShouldBeNil)
		So(w.Write(model.PuttEvent{FrameTime: 2, Classification: model.Miss, Detail: "MISS - CATCH: LEFT - LEFT"}), ShouldBeNil)
		So(w.Close(), ShouldBeNil)

		Convey("When read back", func() {
			res, err := putlog.ReadFile(path)

			Convey("Then the events survive", func() {
				So(err, ShouldBeNil)
				So(res.Errors, ShouldBeEmpty)
				So(len(res.Events), ShouldEqual, 2)
				So(res.Events[1].Detail, ShouldEqual, "MISS - CATCH: LEFT - LEFT")
			})
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := putlog.ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
		So(err, ShouldNotBeNil)
	})
}
