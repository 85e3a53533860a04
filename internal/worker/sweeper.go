// Package worker holds the background loops running beside the HTTP
// server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/service"
)

// Sweeper periodically reaps activities whose deadline has passed. The
// read paths already reap lazily, so the engine stays correct without
// the sweeper; its job is to get the ended event onto the push channel
// close to the deadline instead of at the next poll.
type Sweeper struct {
	activities *service.ActivityService
	interval   time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewSweeper creates a new Sweeper ticking at the given interval.
func NewSweeper(activities *service.ActivityService, interval time.Duration, log zerolog.Logger, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		activities: activities,
		interval:   interval,
		log:        log.With().Str("component", "sweeper").Logger(),
		now:        now,
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *Sweeper) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over the overdue activities.
func (w *Sweeper) Sweep(ctx context.Context) {
	reaped, err := w.activities.SweepOverdue(ctx, w.now())
	if err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if reaped > 0 {
		w.log.Info().Int("reaped", reaped).Msg("overdue activities ended")
	}
}
