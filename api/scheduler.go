/*
scheduler.go - Periodic stats snapshot refresher

PURPOSE:
  Recomputes the current month for every employee on a fixed interval and
  persists the results, so reports read snapshots instead of recomputing.
  Snapshots are a cache; GET /api/employees/{id}/stats always recomputes.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Refreshes once immediately on start
  - Computes the month containing "today" in the handler's location; days
    after today are pending, so a mid-month snapshot shows no absenteeism
  - A failing employee is stored as a snapshot with an error, never skipped

CONFIGURATION:
  - Interval: How often to refresh (default: 1 hour, SNAPSHOT_INTERVAL)
  - Enabled: Whether the scheduler runs (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - stats.go: RefreshSnapshots
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/warp/attendance-engine/generic"
)

// SnapshotScheduler refreshes stats snapshots in the background.
type SnapshotScheduler struct {
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(handler *Handler) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:  handler,
		Interval: time.Hour,
		Enabled:  true,
	}
}

// Start begins the scheduler. It is a no-op when disabled, when Interval is
// not positive, or when already running.
func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.Handler.Logger
	if !s.Enabled || s.Interval <= 0 {
		logger.Info("snapshot scheduler disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	logger.Info("snapshot scheduler started", "interval", s.Interval)
}

// Stop stops the scheduler and waits for an in-flight refresh.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Handler.Logger.Info("snapshot scheduler stopped")
}

func (s *SnapshotScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run immediately on start
	s.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-stop:
			return
		}
	}
}

func (s *SnapshotScheduler) refresh(ctx context.Context) {
	h := s.Handler
	month := h.today().InMonth()
	start := time.Now()

	saved, failed, err := h.RefreshSnapshots(ctx, month)
	switch {
	case errors.Is(err, generic.ErrNoActivePolicy):
		h.Logger.Info("snapshot refresh skipped, no active policy", "month", month)
	case err != nil:
		h.Logger.Error("snapshot refresh failed", "month", month, "error", err)
	default:
		h.Logger.Info("snapshot refresh completed",
			"month", month,
			"saved", saved,
			"failed", failed,
			"duration", time.Since(start))
	}
}
