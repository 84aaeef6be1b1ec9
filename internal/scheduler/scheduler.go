// Package scheduler runs the daily astronomical acquisition.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"coopcontrol/internal/config"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DailyJob is the work run once per day
type DailyJob func(ctx context.Context, date string) (uint, error)

// Scheduler triggers the daily job at a fixed wall-clock time
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       DailyJob
	cfg       config.ScheduleConfig
	logger    *zap.Logger
}

// New creates a scheduler running in loc
func New(cfg config.ScheduleConfig, loc *time.Location, job DailyJob, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		job:       job,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the daily job and starts the scheduler in the background
func (s *Scheduler) Start() error {
	if s.cfg.Disabled {
		s.logger.Info("Daily astronomical job disabled")
		return nil
	}

	sched := s.scheduler.Every(1).Day().At(s.cfg.DailyAt)
	if s.cfg.RunOnStart {
		sched = sched.StartImmediately()
	}
	if _, err := sched.Do(s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}

	s.scheduler.StartAsync()

	_, next := s.scheduler.NextRun()
	s.logger.Info("Daily astronomical job scheduled",
		zap.String("at", s.cfg.DailyAt),
		zap.Bool("run_on_start", s.cfg.RunOnStart),
		zap.Time("next_run", next))
	return nil
}

// RunOnce runs the job for "today" with its own timeout. Failures are logged;
// the next scheduled run is the retry.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	s.logger.Info("Running daily astronomical job")
	id, err := s.job(ctx, "today")
	if err != nil {
		s.logger.Error("Daily astronomical job failed", zap.Error(err))
		return
	}
	s.logger.Info("Daily astronomical job completed", zap.Uint("id", id))
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
