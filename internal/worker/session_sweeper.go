package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper forgets idle in-memory workspaces.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// IdlePurger deletes durable session records not touched since before.
type IdlePurger interface {
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

// SessionSweeperConfig controls the sweep cadence.
type SessionSweeperConfig struct {
	Interval time.Duration
	Idle     time.Duration
	// RecordTTL is how long durable records outlive their last write. Zero keeps them.
	RecordTTL time.Duration
}

// StartSessionSweeper runs until ctx is cancelled. purger may be nil.
func StartSessionSweeper(ctx context.Context, cfg SessionSweeperConfig, sweeper Sweeper, purger IdlePurger, logger *zap.Logger) {
	if sweeper == nil || cfg.Interval <= 0 || cfg.Idle <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepOnce(ctx, cfg, sweeper, purger, logger)
			}
		}
	}()
}

func sweepOnce(ctx context.Context, cfg SessionSweeperConfig, sweeper Sweeper, purger IdlePurger, logger *zap.Logger) {
	if n := sweeper.Sweep(cfg.Idle); n > 0 {
		logger.Info("idle workspaces released", zap.Int("count", n))
	}
	if purger == nil || cfg.RecordTTL <= 0 {
		return
	}
	n, err := purger.DeleteIdle(ctx, time.Now().Add(-cfg.RecordTTL))
	if err != nil {
		logger.Warn("session purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("stale session records purged", zap.Int64("count", n))
	}
}
