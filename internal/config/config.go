// Package config defines service configuration and its loading.
//
// Values are layered defaults, then an optional YAML file, then
// PUTTRACK_* environment variables.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/domain/session"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the frame queue across all shards.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of queue shards and workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize is how many frame IDs each session remembers.
	DedupeSize int `koanf:"dedupe_size"`

	// CalibrationPath points at the zone calibration file.
	CalibrationPath string `koanf:"calibration_path"`

	// DatabasePath is the sqlite session archive. Empty keeps archives
	// in memory.
	DatabasePath string `koanf:"database_path"`

	// LogDir receives one putt log CSV per session.
	LogDir string `koanf:"log_dir"`

	RampExitTimeout float64 `koanf:"ramp_exit_timeout"`
	SupplyGrace     float64 `koanf:"supply_grace"`
	ReturnDelay     float64 `koanf:"return_delay"`

	FastestK         int     `koanf:"fastest_k"`
	WindowSeconds    float64 `koanf:"window_seconds"`
	StreakThresholds []int   `koanf:"streak_thresholds"`

	// MaxFrameDetections rejects frames carrying more detections.
	MaxFrameDetections int `koanf:"max_frame_detections"`
}

// New returns a Config holding the defaults.
func New() *Config {
	cc := classifier.DefaultConfig()
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         4096,
		CalibrationPath:    "calibration.json",
		LogDir:             "logs",
		RampExitTimeout:    cc.RampExitTimeout,
		SupplyGrace:        cc.SupplyGrace,
		ReturnDelay:        cc.ReturnDelay,
		FastestK:           session.DefaultFastestK,
		WindowSeconds:      session.DefaultWindowSeconds,
		StreakThresholds:   append([]int(nil), session.DefaultThresholds...),
		MaxFrameDetections: 64,
	}
}

// Classifier returns the classifier timing configuration.
func (c *Config) Classifier() classifier.Config {
	return classifier.Config{
		RampExitTimeout: c.RampExitTimeout,
		SupplyGrace:     c.SupplyGrace,
		ReturnDelay:     c.ReturnDelay,
	}
}

// ReportOptions returns the aggregation options.
func (c *Config) ReportOptions() []session.Option {
	return []session.Option{
		session.WithFastestK(c.FastestK),
		session.WithWindow(c.WindowSeconds),
		session.WithThresholds(c.StreakThresholds...),
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.QueueSize <= 0 {
		problems = append(problems, "queue_size must be positive")
	}
	if c.WorkerCount <= 0 {
		problems = append(problems, "worker_count must be positive")
	}
	if c.RampExitTimeout <= 0 || c.SupplyGrace <= 0 || c.ReturnDelay <= 0 {
		problems = append(problems, "classifier timings must be positive")
	}
	if c.FastestK <= 0 {
		problems = append(problems, "fastest_k must be positive")
	}
	if c.WindowSeconds <= 0 {
		problems = append(problems, "window_seconds must be positive")
	}
	for _, t := range c.StreakThresholds {
		if t <= 0 {
			problems = append(problems, "streak_thresholds must be positive")
			break
		}
	}
	if c.MaxFrameDetections <= 0 {
		problems = append(problems, "max_frame_detections must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
