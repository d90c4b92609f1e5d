package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/puttrack/internal/config"
)

var configEnvVars = []string{
	"PUTTRACK_CONFIG", "PUTTRACK_ADDR", "PUTTRACK_QUEUE_SIZE", "PUTTRACK_WORKER_COUNT",
	"PUTTRACK_RAMP_EXIT_TIMEOUT", "PUTTRACK_STREAK_THRESHOLDS", "PUTTRACK_DATABASE_PATH",
	"PUTTRACK_LOG_JSON", "PUTTRACK_FASTEST_K",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "puttrack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.RampExitTimeout, convey.ShouldEqual, 3.0)
			convey.So(cfg.SupplyGrace, convey.ShouldEqual, 1.0)
			convey.So(cfg.ReturnDelay, convey.ShouldEqual, 0.25)
			convey.So(cfg.FastestK, convey.ShouldEqual, 21)
			convey.So(cfg.StreakThresholds, convey.ShouldResemble, []int{3, 7, 10, 15, 21, 50, 100})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then it converts into component settings", func() {
			cc := cfg.Classifier()
			convey.So(cc.RampExitTimeout, convey.ShouldEqual, cfg.RampExitTimeout)
			convey.So(len(cfg.ReportOptions()), convey.ShouldEqual, 3)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults come back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DatabasePath, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("PUTTRACK_ADDR", ":8080")
			_ = os.Setenv("PUTTRACK_QUEUE_SIZE", "500")
			_ = os.Setenv("PUTTRACK_WORKER_COUNT", "3")
			_ = os.Setenv("PUTTRACK_RAMP_EXIT_TIMEOUT", "2.5")
			_ = os.Setenv("PUTTRACK_STREAK_THRESHOLDS", "5,10")
			_ = os.Setenv("PUTTRACK_LOG_JSON", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.RampExitTimeout, convey.ShouldEqual, 2.5)
				convey.So(cfg.StreakThresholds, convey.ShouldResemble, []int{5, 10})
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a YAML file is given", func() {
			path := writeConfig(t, `
addr: ":9090"
database_path: /tmp/puttrack.db
calibration_path: rois.json
streak_thresholds: [4, 8]
window_seconds: 30
`)
			_ = os.Setenv("PUTTRACK_CONFIG", path)
			_ = os.Setenv("PUTTRACK_FASTEST_K", "10")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file layer applies and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "/tmp/puttrack.db")
				convey.So(cfg.CalibrationPath, convey.ShouldEqual, "rois.json")
				convey.So(cfg.StreakThresholds, convey.ShouldResemble, []int{4, 8})
				convey.So(cfg.WindowSeconds, convey.ShouldEqual, 30.0)
				convey.So(cfg.FastestK, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When values are out of range", func() {
			_ = os.Setenv("PUTTRACK_QUEUE_SIZE", "0")
			_ = os.Setenv("PUTTRACK_STREAK_THRESHOLDS", "3,-1")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "queue_size")
				convey.So(err.Error(), convey.ShouldContainSubstring, "streak_thresholds")
			})
		})
	})
}
