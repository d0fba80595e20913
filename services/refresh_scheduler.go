package services

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = 30 * time.Second

// Refresher refetches events for the current location.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler refetches events on a cron schedule. Overlapping runs are
// skipped.
type RefreshScheduler struct {
	cron      *cron.Cron
	entry     cron.EntryID
	refresher Refresher
	log       *zap.SugaredLogger
}

// NewRefreshScheduler parses schedule (standard five-field cron syntax or a
// descriptor such as "@every 15m") evaluated in loc.
func NewRefreshScheduler(schedule string, loc *time.Location, refresher Refresher) (*RefreshScheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	log := logger.GetLogger().Named("refresh-scheduler")
	cl := cronLogger{log: log}
	s := &RefreshScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		refresher: refresher,
		log:       log,
	}

	id, err := s.cron.AddFunc(schedule, s.RunOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	s.entry = id
	return s, nil
}

// Start runs the schedule in the background.
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.log.Infow("Refresh scheduler started", "next", s.Next())
}

// Stop prevents new runs and waits for a running one until ctx is done.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next scheduled run, zero before Start.
func (s *RefreshScheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// RunOnce performs a single refresh.
func (s *RefreshScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.log.Warnw("Scheduled refresh failed", "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("Scheduled refresh done", "duration", time.Since(start))
}

// cronLogger sends cron's own messages to zap. Cron reports routine
// scheduling at info level, which is debug noise here.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
