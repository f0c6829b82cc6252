package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// Flag is the global pause switch of the dispatcher.
type Flag interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

// MemoryFlag is a process-local Flag.
type MemoryFlag struct {
	enabled atomic.Bool
}

func NewMemoryFlag(enabled bool) *MemoryFlag {
	f := &MemoryFlag{}
	f.enabled.Store(enabled)
	return f
}

func (f *MemoryFlag) Enabled(context.Context) (bool, error) { return f.enabled.Load(), nil }

func (f *MemoryFlag) SetEnabled(_ context.Context, enabled bool) error {
	f.enabled.Store(enabled)
	return nil
}

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers      int
	PollInterval time.Duration
	JobTimeout   time.Duration
}

// Dispatcher promotes queued jobs to RUNNING and executes them on a fixed
// number of workers. Reading the flag and claiming a job happen under one
// gate, so a pause takes effect before the next claim.
type Dispatcher struct {
	repo     job.Repository
	flag     Flag
	cfg      DispatcherConfig
	logger   logger.Interface
	handlers map[job.Type]job.Handler

	gate sync.Mutex
	wake chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     *conc.WaitGroup
}

func NewDispatcher(repo job.Repository, flag Flag, cfg DispatcherConfig, log logger.Interface) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Dispatcher{
		repo:     repo,
		flag:     flag,
		cfg:      cfg,
		logger:   log,
		handlers: make(map[job.Type]job.Handler),
		wake:     make(chan struct{}, 1),
	}
}

// Register sets the handler for a job type. Call before Start.
func (d *Dispatcher) Register(t job.Type, h job.Handler) {
	d.handlers[t] = h
}

// RegisterAll sets every handler in hs.
func (d *Dispatcher) RegisterAll(hs map[job.Type]job.Handler) {
	for t, h := range hs {
		d.Register(t, h)
	}
}

// Notify wakes an idle worker.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// JobSubmitted wakes a worker for a freshly stored job.
func (d *Dispatcher) JobSubmitted(context.Context, *job.Job) {
	d.Notify()
}

func (d *Dispatcher) Enabled(ctx context.Context) (bool, error) {
	return d.flag.Enabled(ctx)
}

// SetEnabled pauses or resumes promotion of queued jobs. Jobs already
// running finish normally.
func (d *Dispatcher) SetEnabled(ctx context.Context, enabled bool) error {
	d.gate.Lock()
	err := d.flag.SetEnabled(ctx, enabled)
	d.gate.Unlock()
	if err != nil {
		return err
	}
	if enabled {
		d.Notify()
	}
	return nil
}

// Start launches the workers. It is a no-op when already started.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg = conc.NewWaitGroup()
	for i := range d.cfg.Workers {
		d.wg.Go(func() { d.work(ctx, i) })
	}
	d.logger.Infow("job dispatcher started",
		"workers", d.cfg.Workers,
		"poll_interval", d.cfg.PollInterval,
	)
}

// Stop cancels the workers and waits for running jobs to return.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel, wg := d.cancel, d.wg
	d.cancel, d.wg = nil, nil
	d.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	wg.Wait()
	d.logger.Infow("job dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		for {
			ran, err := d.RunOnce(ctx)
			if err != nil {
				d.logger.Warnw("dispatch failed", "worker", worker, "error", err)
				break
			}
			if !ran {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		case <-ticker.C:
		}
	}
}

// RunOnce claims and executes at most one job. It reports whether a job ran.
func (d *Dispatcher) RunOnce(ctx context.Context) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	j, err := d.claim(ctx)
	if err != nil || j == nil {
		return false, err
	}
	d.execute(ctx, j)
	return true, nil
}

func (d *Dispatcher) claim(ctx context.Context) (*job.Job, error) {
	d.gate.Lock()
	defer d.gate.Unlock()

	enabled, err := d.flag.Enabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read scheduler flag: %w", err)
	}
	if !enabled {
		return nil, nil
	}
	return d.repo.ClaimNext(ctx, time.Now().UTC())
}

func (d *Dispatcher) execute(ctx context.Context, j *job.Job) {
	start := time.Now()
	result, runErr := d.run(ctx, j)

	to := job.StateFinished
	if runErr != nil {
		to = job.StateFailed
		result = failureResult(runErr)
	}

	// resolve even when shutting down, so the job does not stay RUNNING
	resolveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	ok, err := d.repo.CompareAndSwapState(resolveCtx, j.ID(), job.StateRunning, to, result)
	if err != nil || !ok {
		d.logger.Errorw("failed to resolve job",
			"job_id", j.ID(),
			"state", to,
			"swapped", ok,
			"error", err,
		)
		return
	}

	if runErr != nil {
		d.logger.Warnw("job failed",
			"job_id", j.ID(),
			"type", j.Type(),
			"owner_key", j.OwnerKey(),
			"duration", time.Since(start),
			"error", runErr,
		)
		return
	}
	d.logger.Infow("job finished",
		"job_id", j.ID(),
		"type", j.Type(),
		"owner_key", j.OwnerKey(),
		"duration", time.Since(start),
	)
}

func (d *Dispatcher) run(ctx context.Context, j *job.Job) (result string, err error) {
	h, ok := d.handlers[j.Type()]
	if !ok {
		return "", fmt.Errorf("no handler for job type %s", j.Type())
	}
	if d.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.JobTimeout)
		defer cancel()
	}

	var catcher panics.Catcher
	catcher.Try(func() { result, err = h(ctx, j) })
	if r := catcher.Recovered(); r != nil {
		d.logger.Errorw("job panicked", "job_id", j.ID(), "panic", r.Value, "stack", string(r.Stack))
		return "", r.AsError()
	}
	return result, err
}

func failureResult(err error) string {
	b, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return err.Error()
	}
	return string(b)
}
