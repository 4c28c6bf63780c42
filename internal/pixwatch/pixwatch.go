// Package pixwatch periodically reconciles PIX receipts that are still waiting
// for payment. Clients normally drive confirmation through payment-status
// polling; the watcher catches sessions whose clients went away before the
// payment settled.
package pixwatch

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper interface {
	SweepPendingPix(ctx context.Context, limit int) (int, error)
}

type Watcher struct {
	sweeper  Sweeper
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func New(sweeper Sweeper, interval time.Duration, batch int, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &Watcher{
		sweeper:  sweeper,
		interval: interval,
		batch:    batch,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	confirmed, err := w.sweeper.SweepPendingPix(ctx, w.batch)
	if err != nil {
		w.logger.Error("pix sweep failed", "error", err)
		return
	}

	if confirmed > 0 {
		w.logger.Info("pix sweep confirmed payments", "count", confirmed)
	}
}
