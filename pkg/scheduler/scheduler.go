package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

const (
	TickJob    = "quiz-tick"
	CleanupJob = "session-cleanup"
)

var ErrNoTick = errors.New("scheduler: tick function is required")

// Jobs are the periodic tasks the bot runs in the background.
type Jobs struct {
	// Tick advances hint and timeout timers for every live session.
	Tick func(ctx context.Context)
	// Cleanup drops persisted sessions that can no longer be resumed.
	Cleanup func(now time.Time) (int64, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler       *gocron.Scheduler
	tickInterval    time.Duration
	cleanupInterval time.Duration
	jobs            Jobs
}

// New creates a scheduler. cleanupInterval of zero disables the cleanup job.
func New(tickInterval, cleanupInterval time.Duration, jobs Jobs) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		tickInterval:    tickInterval,
		cleanupInterval: cleanupInterval,
		jobs:            jobs,
	}
}

// Start registers the jobs and runs them without blocking. The jobs stop
// when Stop is called; ctx is handed to every tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.jobs.Tick == nil {
		return ErrNoTick
	}

	// A slow tick must not overlap the next one or events would be
	// delivered twice.
	_, err := s.scheduler.Every(s.tickInterval).Tag(TickJob).SingletonMode().Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.jobs.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", TickJob, err)
	}

	if s.jobs.Cleanup != nil && s.cleanupInterval > 0 {
		_, err = s.scheduler.Every(s.cleanupInterval).Tag(CleanupJob).SingletonMode().Do(s.cleanup)
		if err != nil {
			return fmt.Errorf("schedule %s: %w", CleanupJob, err)
		}
	}

	s.scheduler.StartAsync()
	logger.Info("scheduler started", "tick_interval", s.tickInterval, "cleanup_interval", s.cleanupInterval)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) cleanup() {
	removed, err := s.jobs.Cleanup(time.Now().UTC())
	if err != nil {
		logger.Error("failed to clean up expired sessions", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("removed expired quiz sessions", "count", removed)
	}
}
