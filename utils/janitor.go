package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper evicts expired entries from an in-memory store and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// StartJanitor periodically sweeps the in-memory fallbacks of the Redis-backed stores
// until ctx is cancelled.
func StartJanitor(ctx context.Context, interval time.Duration, sweepers ...Sweeper) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed := SweepAll(now, sweepers...)
				if removed > 0 {
					Logger.Debug("janitor swept expired entries", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// SweepAll runs every sweeper once.
func SweepAll(now time.Time, sweepers ...Sweeper) int {
	removed := 0
	for _, s := range sweepers {
		if s != nil {
			removed += s.Sweep(now)
		}
	}
	return removed
}
