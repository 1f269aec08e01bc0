// Package cron precomputes weekly reports on a schedule so Monday
// morning dashboard loads hit the cache.
package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/analytics"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
	"github.com/SVPraveen1/health-ai-sub000/internal/metrics"
)

// Runner schedules the weekly precompute.
type Runner struct {
	store         *health.Store
	engine        *analytics.Engine
	cache         *analytics.ReportCache
	metrics       *metrics.Metrics
	logger        *zap.Logger
	maxConcurrent int

	cron *cron.Cron
}

func New(store *health.Store, engine *analytics.Engine, cache *analytics.ReportCache, m *metrics.Metrics, logger *zap.Logger, maxConcurrent int) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Runner{
		store:         store,
		engine:        engine,
		cache:         cache,
		metrics:       m,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		cron:          cron.New(),
	}
}

// Start registers the schedule and starts the cron loop. The schedule
// is a standard 5-field cron expression; reports cover the week that
// ended before the tick.
func (r *Runner) Start(schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		r.RunOnce(context.Background(), time.Now())
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("Weekly report scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Weekly report scheduler stopped")
}

// RunOnce builds and caches the report for the week that ended at or
// before now, for every user with readings in that window. Per-user
// failures are logged and skipped; one bad series never blocks the
// batch.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) {
	end := weekStart(now)
	window := analytics.Window{Start: end.AddDate(0, 0, -7), End: end}

	if r.metrics != nil {
		r.metrics.ScheduledRuns.Inc()
	}

	users, err := r.store.MetricUserIDs(window.Start, window.End)
	if err != nil {
		r.logger.Error("Failed to list users for precompute", zap.Error(err))
		return
	}

	r.logger.Info("Weekly precompute started",
		zap.Time("week_start", window.Start),
		zap.Int("users", len(users)))

	sem := make(chan struct{}, r.maxConcurrent)
	var wg sync.WaitGroup
	var built, failed int
	var mu sync.Mutex

	for _, uid := range users {
		select {
		case <-ctx.Done():
			r.logger.Warn("Weekly precompute cancelled", zap.Error(ctx.Err()))
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := r.buildUser(uid, window)

			mu.Lock()
			if err != nil {
				failed++
			} else {
				built++
			}
			mu.Unlock()

			if err != nil {
				if r.metrics != nil {
					r.metrics.ScheduledFailures.Inc()
				}
				r.logger.Warn("Precompute failed for user", zap.String("user_id", uid), zap.Error(err))
			}
		}(uid)
	}

	wg.Wait()
	r.logger.Info("Weekly precompute finished",
		zap.Int("built", built),
		zap.Int("failed", failed))
}

func (r *Runner) buildUser(uid string, window analytics.Window) error {
	readings, err := r.store.GetMetricsWindow(uid, window.Start, window.End)
	if err != nil {
		return err
	}
	goals, err := r.store.ListGoals(uid)
	if err != nil {
		return err
	}

	report, err := r.engine.WeeklyReport(uid, readings, goals, window)
	if err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.ReportsBuilt.Inc()
	}

	if r.cache != nil {
		return r.cache.Put(report)
	}
	return nil
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
