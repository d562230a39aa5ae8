package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.calls.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

type stubLocker struct {
	err      error
	keys     []string
	released int
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}

type stubExpirer struct {
	n   int
	err error
}

func (e stubExpirer) ExpireOverdueCheques(context.Context) (int, error) {
	return e.n, e.err
}

func testConfig() Config {
	return Config{Interval: time.Hour, JobTimeout: time.Second}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
	assert.True(t, cfg.RunOnStart)
}

func TestScheduler_StartRejectsInvalidConfig(t *testing.T) {
	s := NewScheduler(Config{JobTimeout: time.Second}, &countingJob{}, zap.NewNop())
	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunOnStart(t *testing.T) {
	job := &countingJob{}
	cfg := testConfig()
	cfg.RunOnStart = true
	s := NewScheduler(cfg, job, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	run := s.LastRun()
	require.NotNil(t, run)
	assert.Equal(t, RunStatusSuccess, run.Status)
	assert.Equal(t, "counting", run.Job)
	assert.NotNil(t, run.CompletedAt)
}

func TestScheduler_TickerFires(t *testing.T) {
	job := &countingJob{}
	s := NewScheduler(Config{Interval: 10 * time.Millisecond, JobTimeout: time.Second}, job, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScheduler_TriggerNow(t *testing.T) {
	job := &countingJob{err: errors.New("db down")}
	s := NewScheduler(testConfig(), job, zap.NewNop())

	_, err := s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	run, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "db down", run.Error)
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestScheduler_TriggerNowWhileBusy(t *testing.T) {
	job := &countingJob{block: make(chan struct{})}
	cfg := testConfig()
	cfg.RunOnStart = true
	s := NewScheduler(cfg, job, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := s.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(job.block)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_LockHeldElsewhereSkips(t *testing.T) {
	job := &countingJob{}
	locker := &stubLocker{err: shared.NewConflictError("INVOICE_BUSY", "busy")}
	s := NewScheduler(testConfig(), job, zap.NewNop(), WithLocker(locker))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	run, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunStatusSkipped, run.Status)
	assert.Zero(t, job.calls.Load())
	assert.Equal(t, []string{"scheduler:counting"}, locker.keys)
}

func TestScheduler_LockReleasedAfterRun(t *testing.T) {
	job := &countingJob{}
	locker := &stubLocker{}
	fixed := time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC)
	s := NewScheduler(testConfig(), job, zap.NewNop(), WithLocker(locker), WithClock(func() time.Time { return fixed }))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	run, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuccess, run.Status)
	assert.Equal(t, fixed, run.StartedAt)
	assert.Equal(t, 1, locker.released)
}

func TestChequeSweepJob(t *testing.T) {
	job := NewChequeSweepJob(stubExpirer{n: 3}, nil)
	assert.Equal(t, "cheque-sweep", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	failing := NewChequeSweepJob(stubExpirer{err: errors.New("timeout")}, zap.NewNop())
	err := failing.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cheque sweep")
}
