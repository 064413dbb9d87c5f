// Package scheduler runs the periodic background jobs: next-day shift
// reminders on a cron schedule and outbox replay on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"crewcall/internal/application/orchestrators"
)

// Config controls when the jobs fire.
type Config struct {
	ReminderSchedule string        // 5-field cron spec, e.g. "0 18 * * *"
	OutboxInterval   time.Duration // zero disables outbox replay
}

// Deps bundles the orchestrator dependencies the jobs need.
type Deps struct {
	Reminders orchestrators.SendRemindersDeps
	Outbox    orchestrators.RetryOutboxDeps
}

// Scheduler owns the cron runner. Each job gets a bounded context so a hung
// provider call cannot pile up ticks forever.
type Scheduler struct {
	cron *cron.Cron
	deps Deps
}

// New builds a scheduler with both jobs registered.
// PRE: cfg.ReminderSchedule is a valid cron spec when non-empty
// POST: Returns a scheduler ready to Start, or an error for a bad spec
func New(cfg Config, deps Deps) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), deps: deps}

	if cfg.ReminderSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ReminderSchedule, s.runReminders); err != nil {
			return nil, fmt.Errorf("reminder schedule %q: %w", cfg.ReminderSchedule, err)
		}
	}
	if cfg.OutboxInterval > 0 {
		spec := "@every " + cfg.OutboxInterval.String()
		if _, err := s.cron.AddFunc(spec, s.runOutbox); err != nil {
			return nil, fmt.Errorf("outbox interval %q: %w", spec, err)
		}
	}
	return s, nil
}

// Start begins firing jobs. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler_event", "event", "scheduler_started")
}

// Stop waits for running jobs to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler_event", "event", "scheduler_stopped")
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := orchestrators.ExecuteSendReminders(ctx, s.deps.Reminders); err != nil {
		slog.Error("scheduler_event", "event", "reminder_job_failed", "error", err)
	}
}

func (s *Scheduler) runOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := orchestrators.ExecuteRetryOutbox(ctx, s.deps.Outbox); err != nil {
		slog.Error("scheduler_event", "event", "outbox_job_failed", "error", err)
	}
}
