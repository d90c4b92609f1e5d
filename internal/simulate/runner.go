package simulate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/puttrack/internal/domain/zone"
	"github.com/okian/puttrack/pkg/logger"
)

// Defaults applied to unset Config fields.
const (
	defaultBatch   = 50
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
	percent        = 100
)

func (c *Config) applyDefaults() {
	if c.Batch <= 0 {
		c.Batch = defaultBatch
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Player == "" {
		c.Player = "sim"
	}
	if c.Sessions <= 0 {
		c.Sessions = 1
	}
}

// Run generates cfg.Sessions scripts over the zone map, plays each against
// the service and verifies every report. It fails if any session failed.
func Run(ctx context.Context, cfg Config, zones *zone.Map, log logger.Logger) (Stats, error) {
	cfg.applyDefaults()
	stats := Stats{StartTime: time.Now()}

	layout, err := NewLayout(zones)
	if err != nil {
		return stats, err
	}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("putts", cfg.Putts),
		logger.Int("workers", cfg.Workers))

	jobs := make(chan int)
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				player := fmt.Sprintf("%s-%d", cfg.Player, i)
				script := layout.Generate(player, cfg.Putts, cfg.MakeRate, cfg.Seed, uint64(i))
				sent, dups, err := play(ctx, client, cfg.Batch, script)

				mu.Lock()
				stats.SessionsRun++
				stats.FramesSubmitted += sent
				stats.FramesDuplicate += dups
				if err != nil {
					stats.SessionsFailed++
					errs = append(errs, err)
					log.Warn(ctx, "session failed", logger.String("player", player), logger.Error(err))
				} else {
					stats.SessionsVerified++
				}
				mu.Unlock()
			}
		}()
	}
feed:
	for i := range cfg.Sessions {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if len(errs) > 0 {
		return stats, fmt.Errorf("%d of %d sessions failed, first: %w", len(errs), stats.SessionsRun, errs[0])
	}
	return stats, nil
}

func play(ctx context.Context, c *Client, batch int, s Script) (sent, dups int, err error) {
	id, err := c.StartSession(ctx, s.Player)
	if err != nil {
		return 0, 0, err
	}
	for start := 0; start < len(s.Frames); start += batch {
		end := min(start+batch, len(s.Frames))
		acc, dup, err := c.SubmitFrames(ctx, id, s.Frames[start:end])
		sent += acc
		dups += dup
		if err != nil {
			return sent, dups, err
		}
	}
	report, err := c.EndSession(ctx, id)
	if err != nil {
		return sent, dups, err
	}
	return sent, dups, Verify(s, report)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var successRate, framesPerSecond float64
	if stats.SessionsRun > 0 {
		successRate = float64(stats.SessionsVerified) / float64(stats.SessionsRun) * percent
	}
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("sessionsRun", stats.SessionsRun),
		logger.Int("sessionsVerified", stats.SessionsVerified),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("framesSubmitted", stats.FramesSubmitted),
		logger.Int("framesDuplicate", stats.FramesDuplicate),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("framesPerSecond", framesPerSecond))
}
