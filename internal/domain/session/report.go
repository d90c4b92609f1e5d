// Package session folds an ordered putt event log into session analytics.
package session

import (
	"encoding/json"
	"io"
	"sort"
)

// Defaults used by Aggregate when no option overrides them.
const (
	DefaultFastestK      = 21
	DefaultWindowSeconds = 60.0
)

// DefaultThresholds are the streak lengths counted in every report.
var DefaultThresholds = []int{3, 7, 10, 15, 21, 50, 100}

// Miss buckets, matched case-insensitively in this order.
const (
	BucketCatch   = "CATCH"
	BucketTimeout = "TIMEOUT"
	BucketReturn  = "RETURN"
)

var missBuckets = []string{BucketCatch, BucketTimeout, BucketReturn}

// Info describes the session the report belongs to. It is supplied by the
// caller so reports never depend on the wall clock. Aggregate overwrites
// DurationSeconds with the last event time.
type Info struct {
	SessionID       string  `json:"session_id,omitempty"`
	PlayerName      string  `json:"player_name"`
	PlayerEmail     string  `json:"player_email,omitempty"`
	GeneratedAt     string  `json:"report_generated_at,omitempty"`
	DurationSeconds float64 `json:"session_duration_seconds"`
}

// Stats are the totals and breakdowns.
type Stats struct {
	TotalPutts       int            `json:"total_putts"`
	TotalMakes       int            `json:"total_makes"`
	TotalMisses      int            `json:"total_misses"`
	MakePercentage   float64        `json:"make_percentage"`
	MissPercentage   float64        `json:"miss_percentage"`
	MakesByCategory  map[string]int `json:"makes_by_category"`
	MissesByCategory map[string]int `json:"misses_by_category"`
}

// ThresholdCount is the number of maximal make runs at least Threshold long.
type ThresholdCount struct {
	Threshold int `json:"threshold"`
	Runs      int `json:"runs"`
}

// Streaks are the consecutive-make statistics.
type Streaks struct {
	MaxConsecutive int              `json:"max_consecutive"`
	Thresholds     []ThresholdCount `json:"thresholds"`
}

// Runs returns the run count for threshold t, 0 if t is not tracked.
func (s Streaks) Runs(t int) int {
	for _, tc := range s.Thresholds {
		if tc.Threshold == t {
			return tc.Runs
		}
	}
	return 0
}

// TimeStats are the rate and speed statistics.
type TimeStats struct {
	PuttsPerMinute    float64  `json:"putts_per_minute"`
	MakesPerMinute    float64  `json:"makes_per_minute"`
	WindowSeconds     float64  `json:"window_seconds"`
	MostMakesInWindow int      `json:"most_makes_in_window"`
	FastestK          int      `json:"fastest_k"`
	FastestKSeconds   *float64 `json:"fastest_k_seconds"`
}

// Putt is one event as listed in the report.
type Putt struct {
	Index          int     `json:"index"`
	Time           float64 `json:"time"`
	Classification string  `json:"classification"`
	Detail         string  `json:"detail"`
}

// Report is the structured session report.
type Report struct {
	Info    Info      `json:"session_info"`
	Stats   Stats     `json:"analytic_stats"`
	Streaks Streaks   `json:"consecutive_stats"`
	Time    TimeStats `json:"time_stats"`
	Putts   []Putt    `json:"putt_list"`
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(r)
}

// Option applies a configuration option to Aggregate.
type Option func(*options)

type options struct {
	info       Info
	thresholds []int
	fastestK   int
	window     float64
}

// WithInfo sets the session metadata copied into the report.
func WithInfo(info Info) Option {
	return func(o *options) { o.info = info }
}

// WithThresholds sets the streak thresholds. Non-positive and duplicate
// values are dropped.
func WithThresholds(ts ...int) Option {
	return func(o *options) {
		seen := make(map[int]bool, len(ts))
		var out []int
		for _, t := range ts {
			if t > 0 && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			sort.Ints(out)
			o.thresholds = out
		}
	}
}

// WithFastestK sets how many makes the fastest-run statistic spans.
func WithFastestK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.fastestK = k
		}
	}
}

// WithWindow sets the width in seconds of the most-makes window.
func WithWindow(seconds float64) Option {
	return func(o *options) {
		if seconds > 0 {
			o.window = seconds
		}
	}
}
