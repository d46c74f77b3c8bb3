package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredRowStore deletes throttle rows whose window and lock have both
// passed.
type ExpiredRowStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// ThrottleReaper periodically removes expired rate-limit and lockout rows.
// Correctness never depends on it; reads treat expired rows as absent, so
// the reaper is purely a table-size bound.
type ThrottleReaper struct {
	store    ExpiredRowStore
	interval time.Duration
	logger   *slog.Logger
}

func NewThrottleReaper(store ExpiredRowStore, interval time.Duration, logger *slog.Logger) *ThrottleReaper {
	return &ThrottleReaper{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (tr *ThrottleReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(tr.interval)
	defer ticker.Stop()

	tr.logger.Info("throttle reaper started", slog.Duration("interval", tr.interval))

	for {
		select {
		case <-ctx.Done():
			tr.logger.Info("throttle reaper stopped")
			return
		case <-ticker.C:
			tr.sweep(ctx)
		}
	}
}

func (tr *ThrottleReaper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := tr.store.DeleteExpired(sweepCtx)
	if err != nil {
		tr.logger.Error("throttle sweep failed", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		tr.logger.Debug("throttle sweep completed", slog.Int64("rows_deleted", deleted))
	}
}
