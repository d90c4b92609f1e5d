package session

import "github.com/okian/puttrack/internal/domain/model"

// Tally holds the live counters of a session. It is owned by the caller
// and threaded through every classified event.
type Tally struct {
	Makes         int `json:"makes"`
	Misses        int `json:"misses"`
	Total         int `json:"total"`
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// Record folds one classification into the tally. Empty classifications
// are ignored; anything other than MAKE counts as a miss.
func (t *Tally) Record(c model.Classification) {
	if c == "" {
		return
	}
	t.Total++
	if c == model.Make {
		t.Makes++
		t.CurrentStreak++
		if t.CurrentStreak > t.BestStreak {
			t.BestStreak = t.CurrentStreak
		}
		return
	}
	t.Misses++
	t.CurrentStreak = 0
}

// MakePercentage returns makes as a percentage of the total, 0 when empty.
func (t Tally) MakePercentage() float64 {
	return percent(t.Makes, t.Total)
}
