package refresh

import (
	"context"
	"time"

	decksvc "hermes/internal/services/deck"
	"hermes/pkg/logger"
)

// Worker periodically sweeps deck stocks with stale performance snapshots
// and refreshes them through the quote gateway. Purely opportunistic: a
// failed sweep waits for the next tick.
type Worker struct {
	decks    *decksvc.Service
	interval time.Duration
	maxAge   time.Duration
	batch    int
	log      *logger.Logger
}

// NewWorker creates a new snapshot refresh worker
func NewWorker(decks *decksvc.Service, interval, maxAge time.Duration, batch int, log *logger.Logger) *Worker {
	return &Worker{
		decks:    decks,
		interval: interval,
		maxAge:   maxAge,
		batch:    batch,
		log:      log.With("worker", "snapshot_refresh"),
	}
}

// Run blocks until the context is cancelled
func (w *Worker) Run(ctx context.Context) {
	w.log.Infow("Snapshot refresh worker started",
		"interval", w.interval,
		"max_age", w.maxAge,
		"batch", w.batch,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Snapshot refresh worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	refreshed, err := w.decks.RefreshStaleSnapshots(ctx, w.maxAge, w.batch)
	if err != nil {
		w.log.Warnw("Snapshot sweep failed", "error", err)
		return
	}
	if refreshed > 0 {
		w.log.Infow("Snapshot sweep complete", "refreshed", refreshed)
	}
}
