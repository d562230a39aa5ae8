package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunStatus represents the status of a scheduled run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Locker keeps a job to one replica at a time
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Run records one execution of the job
type Run struct {
	ID          uuid.UUID
	Job         string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

func newRun(job string, now time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		Job:       job,
		Status:    RunStatusRunning,
		StartedAt: now,
	}
}

func (r *Run) finish(status RunStatus, err error, now time.Time) {
	r.Status = status
	r.CompletedAt = &now
	if err != nil {
		r.Error = err.Error()
	}
}

// Config holds scheduler configuration
type Config struct {
	// Interval between the end of one tick and the next
	Interval time.Duration
	// JobTimeout bounds a single run
	JobTimeout time.Duration
	// RunOnStart executes the job once right after Start
	RunOnStart bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval:   time.Hour,
		JobTimeout: 5 * time.Minute,
		RunOnStart: true,
	}
}

func (c Config) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocker makes each run hold a named lock. A run whose lock is held
// elsewhere is skipped.
func WithLocker(locker Locker) Option {
	return func(s *Scheduler) {
		s.locker = locker
	}
}

// WithClock overrides the time source used for run records
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// Scheduler runs a single job on a fixed interval
type Scheduler struct {
	config Config
	job    Job
	locker Locker
	clock  func() time.Time
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	runMu     sync.Mutex
	isRunning bool
	lastRun   *Run
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, job Job, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		config: config,
		job:    job,
		clock:  time.Now,
		logger: logger.With(zap.String("job", job.Name())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the ticker loop
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.config.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns a copy of the most recent run, or nil
func (s *Scheduler) LastRun() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

// TriggerNow executes the job outside the ticker. It fails instead of
// waiting when a run is already in progress.
func (s *Scheduler) TriggerNow(ctx context.Context) (*Run, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.execute(ctx), nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Debug("Previous run still in progress, skipping tick")
		return
	}
	defer s.runMu.Unlock()
	s.execute(ctx)
}

func (s *Scheduler) execute(ctx context.Context) *Run {
	run := newRun(s.job.Name(), s.clock())
	s.record(run)

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if s.locker != nil {
		release, err := s.locker.Acquire(runCtx, "scheduler:"+s.job.Name())
		if err != nil {
			if shared.KindOf(err) == shared.KindConflict {
				s.logger.Debug("Job lock held elsewhere, skipping run")
				run.finish(RunStatusSkipped, nil, s.clock())
			} else {
				s.logger.Error("Failed to acquire job lock", zap.Error(err))
				run.finish(RunStatusFailed, err, s.clock())
			}
			s.record(run)
			return run
		}
		defer release()
	}

	if err := s.job.Run(runCtx); err != nil {
		s.logger.Error("Job failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		run.finish(RunStatusFailed, err, s.clock())
	} else {
		s.logger.Debug("Job completed", zap.String("run_id", run.ID.String()))
		run.finish(RunStatusSuccess, nil, s.clock())
	}
	s.record(run)
	return run
}

func (s *Scheduler) record(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *run
	s.lastRun = &copied
}
