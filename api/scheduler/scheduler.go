// Package scheduler runs the periodic case refresh and pending queue sync jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

// Jobs is the work the scheduler drives
type Jobs interface {
	Refresh(ctx context.Context) reconcile.Snapshot
	SyncPending(ctx context.Context) (int, error)
}

// Scheduler handles periodic background jobs for the case view
type Scheduler struct {
	cron         *cron.Cron
	jobs         Jobs
	pollInterval time.Duration
	syncInterval time.Duration
	jobTimeout   time.Duration
}

// NewScheduler creates a scheduler. A tick that fires while the previous run of the same job
// is still going is skipped.
func NewScheduler(jobs Jobs, pollInterval, syncInterval time.Duration) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs:         jobs,
		pollInterval: pollInterval,
		syncInterval: syncInterval,
		jobTimeout:   2 * time.Minute,
	}
}

// Start registers the jobs and begins running them
func (s *Scheduler) Start() error {
	if s.pollInterval <= 0 || s.syncInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive, got poll=%s sync=%s", s.pollInterval, s.syncInterval)
	}
	if _, err := s.cron.AddFunc("@every "+s.pollInterval.String(), s.refresh); err != nil {
		return fmt.Errorf("registering refresh job: %w", err)
	}
	if _, err := s.cron.AddFunc("@every "+s.syncInterval.String(), s.sync); err != nil {
		return fmt.Errorf("registering sync job: %w", err)
	}

	s.cron.Start()
	zap.S().Infow("case scheduler started", "poll", s.pollInterval, "sync", s.syncInterval)
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("case scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	snap := s.jobs.Refresh(ctx)
	if snap.Degraded() {
		zap.S().Warnw("case refresh degraded",
			"remoteOk", snap.RemoteOK,
			"localOk", snap.LocalOK,
			"cases", len(snap.Cases),
		)
		return
	}
	zap.S().Debugw("case refresh complete", "cases", len(snap.Cases), "seq", snap.Seq)
}

func (s *Scheduler) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	n, err := s.jobs.SyncPending(ctx)
	if err != nil {
		zap.S().Warnw("pending sync stopped early", "synced", n, "error", err)
		return
	}
	if n > 0 {
		zap.S().Infow("pending cases synced", "synced", n)
	}
}

// cronLogger routes cron's own logging through zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
