package simulate

import (
	"fmt"

	"github.com/okian/puttrack/internal/domain/session"
)

// Verify compares a report against what the script should have produced.
func Verify(s Script, r session.Report) error {
	want := s.Expected()
	got := Expectation{
		Putts:     r.Stats.TotalPutts,
		Makes:     r.Stats.TotalMakes,
		Catches:   r.Stats.MissesByCategory[session.BucketCatch],
		Returns:   r.Stats.MissesByCategory[session.BucketReturn],
		MaxStreak: r.Streaks.MaxConsecutive,
	}
	if got != want {
		return fmt.Errorf("%w: %s: want %+v, got %+v", ErrMismatch, s.Player, want, got)
	}
	if r.Stats.TotalMisses != want.Putts-want.Makes {
		return fmt.Errorf("%w: %s: %d misses for %d putts and %d makes",
			ErrMismatch, s.Player, r.Stats.TotalMisses, want.Putts, want.Makes)
	}
	return nil
}
