package classifier

import "github.com/okian/puttrack/pkg/logger"

// Default timing constants, all in seconds of frame time.
const (
	DefaultRampExitTimeout = 3.0
	DefaultSupplyGrace     = 1.0
	DefaultReturnDelay     = 0.25
)

// Config holds the timing thresholds of the state machine.
type Config struct {
	RampExitTimeout float64
	SupplyGrace     float64
	ReturnDelay     float64
}

// DefaultConfig returns the stock timing thresholds.
func DefaultConfig() Config {
	return Config{
		RampExitTimeout: DefaultRampExitTimeout,
		SupplyGrace:     DefaultSupplyGrace,
		ReturnDelay:     DefaultReturnDelay,
	}
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithRampExitTimeout sets how long a ball may be off the ramp without
// reaching the return before the attempt times out.
func WithRampExitTimeout(seconds float64) Option {
	return func(c *Classifier) {
		if seconds > 0 {
			c.cfg.RampExitTimeout = seconds
		}
	}
}

// WithSupplyGrace sets how recently the ball must have been in supply for
// a ramp entry to start an attempt.
func WithSupplyGrace(seconds float64) Option {
	return func(c *Classifier) {
		if seconds > 0 {
			c.cfg.SupplyGrace = seconds
		}
	}
}

// WithReturnDelay sets the minimum attempt age before a ball back in
// supply counts as a returned miss.
func WithReturnDelay(seconds float64) Option {
	return func(c *Classifier) {
		if seconds > 0 {
			c.cfg.ReturnDelay = seconds
		}
	}
}

// WithConfig sets every threshold at once. Non-positive values keep the
// defaults.
func WithConfig(cfg Config) Option {
	return func(c *Classifier) {
		WithRampExitTimeout(cfg.RampExitTimeout)(c)
		WithSupplyGrace(cfg.SupplyGrace)(c)
		WithReturnDelay(cfg.ReturnDelay)(c)
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}
