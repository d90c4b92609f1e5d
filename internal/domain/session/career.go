package session

import "strings"

// HighSum tracks the best single-session value and the running total.
type HighSum struct {
	High int `json:"high"`
	Sum  int `json:"sum"`
}

func (h *HighSum) add(v int) {
	h.Sum += v
	if v > h.High {
		h.High = v
	}
}

// Career accumulates a player's sessions.
type Career struct {
	Player           string             `json:"player"`
	Sessions         int                `json:"sessions"`
	TotalPutts       int                `json:"total_putts"`
	TotalMakes       int                `json:"total_makes"`
	TotalMisses      int                `json:"total_misses"`
	HighMakes        int                `json:"high_makes"`
	BestStreak       int                `json:"best_streak"`
	FastestK         *float64           `json:"low_fastest_k"`
	HighPPM          float64            `json:"high_ppm"`
	AvgPPM           float64            `json:"avg_ppm"`
	HighMPM          float64            `json:"high_mpm"`
	AvgMPM           float64            `json:"avg_mpm"`
	HighMostInWindow int                `json:"high_most_in_window"`
	HighDuration     float64            `json:"high_duration"`
	SumDuration      float64            `json:"sum_duration"`
	HighAccuracy     float64            `json:"high_accuracy"`
	AvgAccuracy      float64            `json:"avg_accuracy"`
	Consecutive      map[int]HighSum    `json:"consecutive"`
	MakesOverview    map[string]HighSum `json:"makes_overview"`
	MakesDetailed    map[string]HighSum `json:"makes_detailed"`
	MissesOverview   map[string]HighSum `json:"misses_overview"`
	MissesDetailed   map[string]HighSum `json:"misses_detailed"`
}

var makeQuadrants = []string{"TOP", "RIGHT", "LOW", "LEFT"}

// NewCareer returns an empty career for player.
func NewCareer(player string) Career {
	c := Career{
		Player:         player,
		Consecutive:    map[int]HighSum{},
		MakesOverview:  map[string]HighSum{},
		MakesDetailed:  map[string]HighSum{},
		MissesOverview: map[string]HighSum{},
		MissesDetailed: map[string]HighSum{},
	}
	for _, q := range makeQuadrants {
		c.MakesOverview[q] = HighSum{}
	}
	for _, b := range missBuckets {
		c.MissesOverview[b] = HighSum{}
	}
	return c
}

// Add folds a finished session report into the career.
func (c *Career) Add(r Report) {
	c.ensureMaps()
	c.Sessions++
	c.TotalPutts += r.Stats.TotalPutts
	c.TotalMakes += r.Stats.TotalMakes
	c.TotalMisses += r.Stats.TotalMisses
	c.HighMakes = max(c.HighMakes, r.Stats.TotalMakes)
	c.BestStreak = max(c.BestStreak, r.Streaks.MaxConsecutive)
	if f := r.Time.FastestKSeconds; f != nil && (c.FastestK == nil || *f < *c.FastestK) {
		v := *f
		c.FastestK = &v
	}
	c.HighPPM = max(c.HighPPM, r.Time.PuttsPerMinute)
	c.HighMPM = max(c.HighMPM, r.Time.MakesPerMinute)
	c.HighMostInWindow = max(c.HighMostInWindow, r.Time.MostMakesInWindow)
	c.HighDuration = max(c.HighDuration, r.Info.DurationSeconds)
	c.SumDuration = round2(c.SumDuration + r.Info.DurationSeconds)
	if r.Stats.TotalPutts > 0 {
		c.HighAccuracy = max(c.HighAccuracy, r.Stats.MakePercentage)
	}

	c.AvgPPM = round2(perMinute(c.TotalPutts, c.SumDuration))
	c.AvgMPM = round2(perMinute(c.TotalMakes, c.SumDuration))
	c.AvgAccuracy = round2(percent(c.TotalMakes, c.TotalPutts))

	for _, tc := range r.Streaks.Thresholds {
		h := c.Consecutive[tc.Threshold]
		h.add(tc.Runs)
		c.Consecutive[tc.Threshold] = h
	}

	overview := map[string]int{}
	for cat, n := range r.Stats.MakesByCategory {
		h := c.MakesDetailed[cat]
		h.add(n)
		c.MakesDetailed[cat] = h
		if q := quadrantOf(cat); q != "" {
			overview[q] += n
		}
	}
	for _, q := range makeQuadrants {
		h := c.MakesOverview[q]
		h.add(overview[q])
		c.MakesOverview[q] = h
	}
	for _, b := range missBuckets {
		h := c.MissesOverview[b]
		h.add(r.Stats.MissesByCategory[b])
		c.MissesOverview[b] = h
	}

	detailed := map[string]int{}
	for _, p := range r.Putts {
		if p.Classification == "MISS" {
			detailed[strings.TrimPrefix(p.Detail, "MISS - ")]++
		}
	}
	for d, n := range detailed {
		h := c.MissesDetailed[d]
		h.add(n)
		c.MissesDetailed[d] = h
	}
}

func (c *Career) ensureMaps() {
	fresh := NewCareer(c.Player)
	if c.Consecutive == nil {
		c.Consecutive = fresh.Consecutive
	}
	if c.MakesOverview == nil {
		c.MakesOverview = fresh.MakesOverview
	}
	if c.MakesDetailed == nil {
		c.MakesDetailed = fresh.MakesDetailed
	}
	if c.MissesOverview == nil {
		c.MissesOverview = fresh.MissesOverview
	}
	if c.MissesDetailed == nil {
		c.MissesDetailed = fresh.MissesDetailed
	}
}

// quadrantOf extracts the target quadrant from a make category such as
// "HOLE: TOP - LEFT".
func quadrantOf(cat string) string {
	if i := strings.Index(cat, ":"); i >= 0 {
		cat = cat[i+1:]
	}
	first, _, _ := strings.Cut(strings.TrimSpace(cat), " - ")
	for _, q := range makeQuadrants {
		if first == q {
			return q
		}
	}
	return ""
}
