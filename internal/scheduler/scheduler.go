package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockTracker/internal/recorder"
	"StockTracker/internal/view"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher re-loads the currently displayed symbol.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	View      Refresher
	Recorder  recorder.Recorder
	Retention time.Duration
	Logger    *zap.Logger
	Ctx       context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, v Refresher, rec recorder.Recorder, retention time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		View:      v,
		Recorder:  rec,
		Retention: retention,
		Logger:    logger,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the refresh and prune tasks. An empty spec leaves
// that task disabled.
func (s *Scheduler) RegisterAll(refreshCron, pruneCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if pruneCron != "" {
		if s.Retention <= 0 {
			return fmt.Errorf("register prune task: retention must be positive")
		}
		if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
			return fmt.Errorf("register prune task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	s.Logger.Info("running refresh task")
	err := s.View.Refresh(s.Ctx)
	switch {
	case err == nil:
	case errors.Is(err, view.ErrNoSeries):
		s.Logger.Debug("refresh skipped, nothing displayed")
	case errors.Is(err, view.ErrSuperseded):
		s.Logger.Debug("refresh superseded by a user submission")
	default:
		s.Logger.Error("refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) pruneTask() {
	cutoff := s.now().Add(-s.Retention)
	n, err := s.Recorder.Prune(cutoff)
	if err != nil {
		s.Logger.Error("prune load history", zap.Error(err))
		return
	}
	s.Logger.Info("pruned load history", zap.Int64("deleted", n), zap.Time("before", cutoff))
}
