package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/puttrack/internal/adapters/http/api"
	"github.com/okian/puttrack/internal/adapters/repository"
	service "github.com/okian/puttrack/internal/app"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func rect(name zone.Name, x, y, w, h float64) zone.Zone {
	return zone.Zone{Name: name, Polygon: []model.Point{
		{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
	}}
}

func layout() *zone.Map {
	return zone.NewMap([]zone.Zone{
		rect(zone.Supply, 0, 0, 10, 10),
		rect(zone.Ramp, 20, 0, 30, 30),
		rect(zone.RampLeft, 20, 0, 10, 30),
		rect(zone.Target, 60, 0, 10, 10),
		rect(zone.TargetTop, 60, 0, 10, 5),
		rect(zone.Catch, 60, 20, 10, 10),
		rect(zone.Return, 80, 0, 10, 30),
	})
}

func at(t float64, x, y float64) model.Frame {
	return model.Frame{FrameID: fmt.Sprintf("f%.2f", t), FrameTime: t, Detections: []model.Detection{{Center: model.Point{X: x, Y: y}, Confidence: 0.9}}}
}

// makeFrames is supply, ramp, target, return: one make at 0.6.
var makeFrames = []model.Frame{
	at(0, 5, 5),
	at(0.1, 25, 5),
	at(0.4, 65, 2),
	at(0.6, 85, 15),
}

func do(srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		So(err, ShouldBeNil)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	So(err, ShouldBeNil)
	resp, err := srv.Client().Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	So(err, ShouldBeNil)
	return resp, out
}

func newServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestServer_SessionFlow(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithZones(layout()), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)
		srv := newServer(svc)
		Reset(srv.Close)

		Convey("When a player starts a session", func() {
			resp, body := do(srv, http.MethodPost, "/sessions", map[string]string{"player_name": "ann"})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			var info service.SessionInfo
			So(json.Unmarshal(body, &info), ShouldBeNil)
			So(info.ID, ShouldNotBeEmpty)
			So(info.Player, ShouldEqual, "ann")
			base := "/sessions/" + info.ID

			Convey("Then a batch of frames is accepted and duplicates are acknowledged", func() {
				resp, body := do(srv, http.MethodPost, base+"/frames", map[string]any{"frames": makeFrames})
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(string(body), ShouldContainSubstring, `"accepted":4`)

				resp, body = do(srv, http.MethodPost, base+"/frames", makeFrames[0])
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(string(body), ShouldContainSubstring, `"duplicates":1`)

				Convey("And ending the session returns the report", func() {
					resp, body := do(srv, http.MethodPost, base+"/end", nil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					var rep session.Report
					So(json.Unmarshal(body, &rep), ShouldBeNil)
					So(rep.Stats.TotalPutts, ShouldEqual, 1)
					So(rep.Stats.TotalMakes, ShouldEqual, 1)

					resp, body = do(srv, http.MethodGet, base+"/report?format=csv", nil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					So(resp.Header.Get("Content-Type"), ShouldStartWith, "text/csv")
					So(string(body), ShouldContainSubstring, "MAKE")

					resp, _ = do(srv, http.MethodGet, base, nil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)

					resp, body = do(srv, http.MethodGet, "/players/ann/career", nil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					var c session.Career
					So(json.Unmarshal(body, &c), ShouldBeNil)
					So(c.Sessions, ShouldEqual, 1)
					So(c.TotalMakes, ShouldEqual, 1)

					resp, body = do(srv, http.MethodGet, "/players/ann/sessions", nil)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					var list []repository.Summary
					So(json.Unmarshal(body, &list), ShouldBeNil)
					So(list, ShouldHaveLength, 1)

					resp, _ = do(srv, http.MethodPost, base+"/frames", at(5, 5, 5))
					So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				})
			})

			Convey("Then the live status carries the tally", func() {
				resp, body := do(srv, http.MethodGet, base, nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, `"active":true`)
			})
		})

		Convey("When the request is malformed", func() {
			resp, _ := do(srv, http.MethodPost, "/sessions", map[string]string{})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(srv, http.MethodPost, "/sessions/nope/frames", map[string]any{"detections": []any{}})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(srv, http.MethodGet, "/sessions/nope/report?format=xml", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the session or player is unknown", func() {
			resp, _ := do(srv, http.MethodGet, "/sessions/nope", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp, _ = do(srv, http.MethodGet, "/players/nobody/career", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp, body := do(srv, http.MethodGet, "/players/nobody/sessions", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(string(body)), ShouldEqual, "[]")
		})

		Convey("When stats and health are requested", func() {
			resp, body := do(srv, http.MethodGet, "/stats", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"started":true`)

			resp, body = do(srv, http.MethodGet, "/healthz", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "puttrack_")
		})
	})
}

// failingDeps returns a fixed error from every operation.
type failingDeps struct {
	err error
}

func (f failingDeps) GetStats() map[string]any { return map[string]any{} }
func (f failingDeps) StartSession(context.Context, string, string) (service.SessionInfo, error) {
	return service.SessionInfo{}, f.err
}
func (f failingDeps) SubmitFrame(context.Context, string, model.Frame) (bool, error) {
	return false, f.err
}
func (f failingDeps) Status(context.Context, string) (service.Status, error) {
	return service.Status{}, f.err
}
func (f failingDeps) EndSession(context.Context, string) (session.Report, error) {
	return session.Report{}, f.err
}
func (f failingDeps) Report(context.Context, string) (session.Report, error) {
	return session.Report{}, f.err
}
func (f failingDeps) Career(context.Context, string) (session.Career, error) {
	return session.Career{}, f.err
}
func (f failingDeps) Sessions(context.Context, string) ([]repository.Summary, error) {
	return nil, f.err
}

func TestServer_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
		{service.ErrSessionClosed, http.StatusConflict, "session_closed"},
		{service.ErrInvalidFrame, http.StatusBadRequest, "bad_request"},
		{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	Convey("Given handlers over failing dependencies", t, func() {
		for _, tc := range cases {
			Convey(fmt.Sprintf("When the service fails with %v", tc.err), func() {
				srv := newServer(failingDeps{err: fmt.Errorf("wrapped: %w", tc.err)})
				defer srv.Close()

				resp, body := do(srv, http.MethodPost, "/sessions/s1/frames", at(1, 5, 5))
				So(resp.StatusCode, ShouldEqual, tc.status)
				var er struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				So(json.Unmarshal(body, &er), ShouldBeNil)
				So(er.Code, ShouldEqual, tc.code)
				So(er.Message, ShouldContainSubstring, tc.err.Error())
			})
		}
	})
}

func TestWrapKind(t *testing.T) {
	Convey("WrapKind keeps both the kind and the cause", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldStartWith, "api.op: ")

		So(errors.Is(api.WrapKind("api.op", api.ErrNotFound, nil), api.ErrNotFound), ShouldBeTrue)
		So(errors.Is(api.NewKind("api.op", api.ErrConflict), api.ErrConflict), ShouldBeTrue)
	})
}
