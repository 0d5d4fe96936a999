package worker

import (
	"context"
	"log/slog"
	"time"
)

// Completer completes campaigns past their end date.
type Completer interface {
	CompleteExpired(ctx context.Context) (int, error)
}

// Sweeper runs the expired-campaign sweep on a fixed interval. A failed run
// is logged and the next tick runs again.
type Sweeper struct {
	Campaigns Completer
	Interval  time.Duration
	Logger    *slog.Logger
}

// RunOnce performs a single sweep.
func (s Sweeper) RunOnce(ctx context.Context) error {
	completed, err := s.Campaigns.CompleteExpired(ctx)
	if err != nil {
		s.Logger.Error("campaign sweep failed",
			slog.String("event", "campaign_sweep_failed"),
			slog.String("layer", "worker"),
			slog.Int("completed_count", completed),
			slog.Any("error", err))
		return err
	}
	if completed > 0 {
		s.Logger.Info("campaign sweep completed",
			slog.String("event", "campaign_sweep_completed"),
			slog.String("layer", "worker"),
			slog.Int("completed_count", completed))
	}
	return nil
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
