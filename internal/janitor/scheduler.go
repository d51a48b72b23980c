// Package janitor runs periodic housekeeping against the store.
package janitor

import (
	"context"
	"log/slog"
	"time"
)

// Store is the slice of the roster store the janitor needs.
type Store interface {
	PurgeResolvedInvites(ctx context.Context) (int64, error)
}

// Scheduler deletes accepted and declined invites on a periodic interval.
// It is stateless: each tick independently sweeps whatever resolved invites
// have accumulated.
type Scheduler struct {
	interval time.Duration
	store    Store
}

func NewScheduler(interval time.Duration, store Store) *Scheduler {
	return &Scheduler{interval: interval, store: store}
}

// Start begins periodic cleanup. Runs until context is cancelled; a final
// sweep happens on shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Janitor] Starting invite cleanup scheduler", "interval", s.interval)

	// Initial sweep to catch up with anything left from the last run.
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			slog.Info("[Janitor] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.sweep(shutdownCtx)

			return nil
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	purged, err := s.store.PurgeResolvedInvites(ctx)
	if err != nil {
		slog.Error("[Janitor] Invite cleanup failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("[Janitor] Purged resolved invites", "count", purged)
	}
}
