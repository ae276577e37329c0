// Package scheduler keeps the published baseline simulation fresh.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher recomputes the baseline run.
type Refresher interface {
	RefreshBaseline(ctx context.Context) error
}

// Scheduler runs the baseline refresh on a cron spec (seconds field included).
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	logger    *zap.Logger
	timeout   time.Duration
	ctx       context.Context
}

// New creates a Scheduler. Each refresh is bounded by timeout.
func New(ctx context.Context, refresher Refresher, timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		logger:    logger,
		timeout:   timeout,
		ctx:       ctx,
	}
}

// Register adds the refresh task under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register baseline refresh %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes the refresh immediately (REFRESH_ON_START).
func (s *Scheduler) RunNow() error {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	if err := s.refresh(); err != nil {
		s.logger.Warn("scheduled baseline refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) refresh() error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.RefreshBaseline(ctx); err != nil {
		return err
	}
	s.logger.Debug("baseline refresh done", zap.Duration("duration", time.Since(start)))
	return nil
}
