package ratelimit

import (
	"context"
	"time"

	"github.com/realrushil/website/internal/logging"
)

// Sweeper periodically garbage collects a Limiter. It satisfies
// suture.Service.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(limiter *Limiter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{limiter: limiter, interval: interval}
}

func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			keys := s.limiter.Sweep()
			logging.Debug().Int("keys", keys).Msg("rate limiter swept")
		}
	}
}

func (s *Sweeper) String() string {
	return "ratelimit-sweeper"
}
