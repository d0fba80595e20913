package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestNewRefreshScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewRefreshScheduler("every now and then", time.UTC, &countingRefresher{})
	assert.Error(t, err)
}

func TestRefreshScheduler_RunOnce(t *testing.T) {
	r := &countingRefresher{err: assert.AnError}
	s, err := NewRefreshScheduler("*/15 * * * *", time.UTC, r)
	require.NoError(t, err)

	s.RunOnce()
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRefreshScheduler_Fires(t *testing.T) {
	r := &countingRefresher{}
	s, err := NewRefreshScheduler("@every 1s", time.UTC, r)
	require.NoError(t, err)

	assert.True(t, s.Next().IsZero())
	s.Start()
	assert.False(t, s.Next().IsZero())

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestCronLogger_RoutesPanicsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := cronLogger{log: zap.New(core).Sugar()}

	job := cron.NewChain(cron.Recover(cl)).Then(cron.FuncJob(func() { panic("refresh exploded") }))
	require.NotPanics(t, job.Run)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "cron: panic", errs[0].Message)
	assert.Contains(t, errs[0].ContextMap()["error"], "refresh exploded")

	cl.Info("wake", "now", "2024-06-10T00:00:00Z")
	debug := logs.FilterLevelExact(zapcore.DebugLevel).All()
	require.Len(t, debug, 1)
	assert.Equal(t, "cron: wake", debug[0].Message)
}
