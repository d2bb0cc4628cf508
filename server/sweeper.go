package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper reclaims disk space by deleting artifacts older than the retention
// window on a fixed cadence. All failures are logged and swallowed: the loop
// must stay alive for the lifetime of the process, and one bad entry never
// aborts a sweep.
type Sweeper struct {
	store    ArtifactStore
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper creates a retention sweeper. Passing interval <= 0 disables it.
func NewSweeper(store ArtifactStore, maxAge, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled, sweeping once per interval
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 || s.maxAge <= 0 {
		s.logger.Info("retention sweeper disabled",
			zap.Duration("interval", s.interval),
			zap.Duration("max_age", s.maxAge))
		return
	}

	s.logger.Info("starting retention sweeper",
		zap.Duration("interval", s.interval),
		zap.Duration("max_age", s.maxAge))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeper shutting down")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single pass over the store and returns the number of
// artifacts deleted. A listing failure skips the whole tick; a per-artifact
// deletion failure skips only that artifact.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	artifacts, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list artifacts, skipping sweep", zap.Error(err))
		return 0
	}

	now := s.now()
	removed := 0

	for _, artifact := range artifacts {
		age := artifact.Age(now)
		if age <= s.maxAge {
			continue
		}

		if err := s.store.Delete(ctx, artifact.Name); err != nil {
			s.logger.Error("failed to delete expired artifact",
				zap.String("name", artifact.Name),
				zap.Error(err))
			continue
		}

		s.logger.Info("deleted expired artifact",
			zap.String("name", artifact.Name),
			zap.Duration("age", age))
		removed++
	}

	if removed > 0 {
		s.logger.Info("retention sweep completed", zap.Int("removed", removed))
		sweepDeletions.Add(float64(removed))
	}

	return removed
}
