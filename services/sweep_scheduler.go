package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zealAPI/internal/sweep"
)

// SweepScheduler fires the lifecycle sweep on a cron schedule in a fixed zone.
// Overlapping runs are skipped.
type SweepScheduler struct {
	cron    *cron.Cron
	sweeper *sweep.Sweeper
	log     *zap.Logger
}

func NewSweepScheduler(sweeper *sweep.Sweeper, spec string, loc *time.Location, log *zap.Logger) (*SweepScheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &SweepScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		sweeper: sweeper,
		log:     log.With(zap.String("component", "sweep-scheduler")),
	}

	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	s.log.Info("sweep scheduled", zap.String("spec", spec), zap.String("timezone", loc.String()))
	return s, nil
}

func (s *SweepScheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running sweep to return or ctx to expire.
func (s *SweepScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("sweep still running at shutdown")
	}
}

// RunOnce runs a sweep immediately and records its outcome.
func (s *SweepScheduler) RunOnce(ctx context.Context) (*sweep.Report, error) {
	s.log.Info("running lifecycle sweep")

	report, err := s.sweeper.Run(ctx)
	observeSweep(report, err)
	if err != nil {
		s.log.Error("lifecycle sweep incomplete", zap.Error(err))
	}
	return report, err
}
