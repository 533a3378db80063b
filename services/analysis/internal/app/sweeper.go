package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	rcron "github.com/robfig/cron/v3"

	"melify/services/analysis/internal/config"
)

// Sweep enqueues a job for every journal that is still unanalyzed after the
// grace period. It returns the number of jobs enqueued.
func (a *App) Sweep(ctx context.Context) (int, error) {
	cutoff := a.now().Add(-a.sweepGrace)
	journals, err := a.store.ListUnanalyzedJournals(ctx, cutoff, a.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list unanalyzed journals: %w", err)
	}
	enqueued := 0
	for _, j := range journals {
		if _, err := a.Enqueue(ctx, j.ID, j.UserID); err != nil {
			return enqueued, fmt.Errorf("enqueue journal %s: %w", j.ID, err)
		}
		enqueued++
	}
	if enqueued > 0 {
		a.logger.Info("unanalyzed journals enqueued", "count", enqueued, "cutoff", cutoff)
	}
	return enqueued, nil
}

// startSweeper schedules Sweep. An empty schedule disables it.
func (a *App) startSweeper(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil
	}
	sched := rcron.New(rcron.WithParser(config.ScheduleParser), rcron.WithChain(rcron.SkipIfStillRunning(rcron.DiscardLogger)))
	if _, err := sched.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := a.Sweep(ctx); err != nil {
			a.logger.Error("sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	sched.Start()
	a.sched = sched
	a.logger.Info("sweep scheduled", "schedule", schedule)
	return nil
}
