package session

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/puttrack/internal/domain/model"
)

// Aggregate folds an ordered event log into a report in one pass over the
// events. Events with an empty classification are skipped. The result is a
// pure function of its inputs, so aggregating the same log twice yields
// identical reports. Decreasing frame times return ErrOutOfOrder.
func Aggregate(events []model.PuttEvent, opts ...Option) (Report, error) {
	o := options{
		thresholds: DefaultThresholds,
		fastestK:   DefaultFastestK,
		window:     DefaultWindowSeconds,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := Report{
		Info: o.info,
		Stats: Stats{
			MakesByCategory:  map[string]int{},
			MissesByCategory: map[string]int{},
		},
		Putts: []Putt{},
	}
	for _, b := range missBuckets {
		r.Stats.MissesByCategory[b] = 0
	}

	var (
		makeTimes []float64
		run       int
		runs      []int
		duration  float64
		last      = math.Inf(-1)
	)
	for _, ev := range events {
		if ev.Classification == "" {
			continue
		}
		if ev.FrameTime < last {
			return Report{}, fmt.Errorf("event %d at %.2f after %.2f: %w", len(r.Putts)+1, ev.FrameTime, last, ErrOutOfOrder)
		}
		last = ev.FrameTime
		if ev.FrameTime > duration {
			duration = ev.FrameTime
		}

		r.Putts = append(r.Putts, Putt{
			Index:          len(r.Putts) + 1,
			Time:           ev.FrameTime,
			Classification: string(ev.Classification),
			Detail:         ev.Detail,
		})
		r.Stats.TotalPutts++

		if ev.IsMake() {
			r.Stats.TotalMakes++
			run++
			makeTimes = append(makeTimes, ev.FrameTime)
			r.Stats.MakesByCategory[MakeCategory(ev.Detail)]++
			continue
		}
		r.Stats.TotalMisses++
		if run > 0 {
			runs = append(runs, run)
		}
		run = 0
		if b, ok := MissBucket(ev.Detail); ok {
			r.Stats.MissesByCategory[b]++
		}
	}
	if run > 0 {
		runs = append(runs, run)
	}

	r.Stats.MakePercentage = round2(percent(r.Stats.TotalMakes, r.Stats.TotalPutts))
	r.Stats.MissPercentage = round2(percent(r.Stats.TotalMisses, r.Stats.TotalPutts))

	r.Streaks = streaks(runs, o.thresholds)

	r.Info.DurationSeconds = round2(duration)
	r.Time = TimeStats{
		PuttsPerMinute:    round2(perMinute(r.Stats.TotalPutts, duration)),
		MakesPerMinute:    round2(perMinute(r.Stats.TotalMakes, duration)),
		WindowSeconds:     o.window,
		MostMakesInWindow: mostInWindow(makeTimes, o.window),
		FastestK:          o.fastestK,
		FastestKSeconds:   fastest(makeTimes, o.fastestK),
	}
	return r, nil
}

// MakeCategory strips the "MAKE - " prefix from a make detail.
func MakeCategory(detail string) string {
	return strings.TrimSpace(strings.TrimPrefix(detail, "MAKE - "))
}

// MissBucket returns the first miss bucket named in detail.
func MissBucket(detail string) (string, bool) {
	up := strings.ToUpper(detail)
	for _, b := range missBuckets {
		if strings.Contains(up, b) {
			return b, true
		}
	}
	return "", false
}

func streaks(runs []int, thresholds []int) Streaks {
	s := Streaks{Thresholds: make([]ThresholdCount, len(thresholds))}
	for i, t := range thresholds {
		s.Thresholds[i].Threshold = t
	}
	for _, l := range runs {
		if l > s.MaxConsecutive {
			s.MaxConsecutive = l
		}
		for i := range s.Thresholds {
			if s.Thresholds[i].Threshold <= l {
				s.Thresholds[i].Runs++
			}
		}
	}
	return s
}

// fastest returns the shortest span covering k consecutive makes, nil when
// there are fewer than k.
func fastest(ts []float64, k int) *float64 {
	if k <= 0 || len(ts) < k {
		return nil
	}
	best := math.Inf(1)
	for i := 0; i+k-1 < len(ts); i++ {
		if d := ts[i+k-1] - ts[i]; d < best {
			best = d
		}
	}
	v := round2(best)
	return &v
}

// mostInWindow counts the most makes in any window [t, t+w] anchored at a
// make. ts must be non-decreasing.
func mostInWindow(ts []float64, w float64) int {
	best, j := 0, 0
	for i := range ts {
		for j < len(ts) && ts[j]-ts[i] <= w {
			j++
		}
		if n := j - i; n > best {
			best = n
		}
	}
	return best
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func perMinute(n int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(n) / (seconds / 60)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
