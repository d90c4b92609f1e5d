// Package simulate drives synthetic putting sessions against a running
// tracker over HTTP and checks the reports it returns.
package simulate

import (
	"time"

	"github.com/okian/puttrack/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sessions int           // Number of sessions to run
	Putts    int           // Putts per session
	MakeRate float64       // Share of putts that are makes, 0..1
	Workers  int           // Sessions driven concurrently
	Batch    int           // Frames per request
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for the outcome sequence
	Player   string        // Player name prefix
}

// Outcome is the scripted result of one putt.
type Outcome string

// Scripted outcomes. Each maps to one classifier rule.
const (
	Make       Outcome = "MAKE"
	CatchMiss  Outcome = "CATCH"
	ReturnMiss Outcome = "RETURN"
)

// puttSeconds is the spacing between scripted putts.
const puttSeconds = 1.0

// Script is one generated session: the frames to send and the outcomes
// they should produce.
type Script struct {
	Player   string
	Outcomes []Outcome
	Frames   []model.Frame
}

// Expected returns the totals a correct tracker reports for s.
func (s Script) Expected() Expectation {
	var e Expectation
	run := 0
	for _, o := range s.Outcomes {
		e.Putts++
		if o == Make {
			e.Makes++
			run++
			if run > e.MaxStreak {
				e.MaxStreak = run
			}
			continue
		}
		run = 0
		switch o {
		case CatchMiss:
			e.Catches++
		case ReturnMiss:
			e.Returns++
		}
	}
	return e
}

// Expectation is the part of a report a script determines.
type Expectation struct {
	Putts     int
	Makes     int
	Catches   int
	Returns   int
	MaxStreak int
}

// Stats holds run statistics.
type Stats struct {
	SessionsRun      int
	SessionsVerified int
	SessionsFailed   int
	FramesSubmitted  int
	FramesDuplicate  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
