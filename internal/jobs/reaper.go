package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"evreserve/internal/engine"
)

// Reaper periodically fails reserved sessions whose window fully passed
// without an explicit start, so connectors do not stay held forever.
type Reaper struct {
	engine   *engine.Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewReaper builds the sweeper.
func NewReaper(eng *engine.Engine, interval time.Duration, logger *zap.Logger) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{engine: eng, interval: interval, logger: logger}
}

// Run sweeps on a ticker until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := r.engine.ExpireOverdue(ctx)
			if err != nil {
				r.logger.Warn("reservation sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				r.logger.Info("expired stale reservations", zap.Int("count", expired))
			}
		}
	}
}
