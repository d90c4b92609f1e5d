package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/puttrack/internal/config"
	"github.com/okian/puttrack/pkg/logger"
)

const calibrationJSON = `{
  "camera_index": 0,
  "putting_mat_roi": [[0,0],[10,0],[10,10],[0,10]],
  "ramp_roi": [[20,0],[50,0],[50,30],[20,30]],
  "hole_roi": [[60,0],[70,0],[70,10],[60,10]],
  "catch_roi": [[60,20],[70,20],[70,30],[60,30]],
  "return_track_roi": [[80,0],[90,0],[90,30],[80,30]]
}`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeCalibration(dir string) string {
	path := filepath.Join(dir, "calibration.json")
	convey.So(os.WriteFile(path, []byte(calibrationJSON), 0o600), convey.ShouldBeNil)
	return path
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration with a calibration file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.New()
		cfg.CalibrationPath = writeCalibration(dir)
		cfg.LogDir = filepath.Join(dir, "logs")
		cfg.WorkerCount = 2

		convey.Convey("When the archive is kept in memory", func() {
			cfg.DatabasePath = ""
			svc, err := newService(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service starts and serves the routes", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()

				srv := httptest.NewServer(newMux(ctx, svc))
				defer srv.Close()

				resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader(`{"player_name":"ann"}`))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

				for _, path := range []string{"/stats", "/healthz", "/openapi.yaml", "/api-docs"} {
					resp, err := http.Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					_ = resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When the archive is a sqlite file", func() {
			cfg.DatabasePath = filepath.Join(dir, "db", "puttrack.db")
			svc, err := newService(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the database is created on start", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				svc.Stop()
				_, err := os.Stat(cfg.DatabasePath)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the calibration file is missing", func() {
			cfg.CalibrationPath = filepath.Join(dir, "nope.json")
			_, err := newService(ctx, cfg, logger.NewNop())

			convey.Convey("Then construction fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "nope.json")
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then system metrics update without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then service metrics update without panicking", func() {
			ctx := context.Background()
			cfg := config.New()
			cfg.CalibrationPath = writeCalibration(t.TempDir())
			cfg.LogDir = ""
			svc, err := newService(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updaters stop with their context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
