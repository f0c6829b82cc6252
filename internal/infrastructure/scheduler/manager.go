// Package scheduler runs queued jobs and periodic maintenance.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// BatchJobFunc adapts a function to BatchJob.
type BatchJobFunc func(ctx context.Context) (int, error)

func (f BatchJobFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

// MaintenanceManager runs periodic cleanup on a single gocron scheduler.
type MaintenanceManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewMaintenanceManager(log logger.Interface) (*MaintenanceManager, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &MaintenanceManager{scheduler: s, logger: log}, nil
}

// RegisterDevPoolExpiry deletes expired DEVELOPMENT pools every interval.
func (m *MaintenanceManager) RegisterDevPoolExpiry(interval time.Duration, expire BatchJob) error {
	return m.register("dev-pool-expiry", interval, expire, "pool", "expire")
}

// RegisterJobPurge deletes terminal jobs older than retention every interval.
func (m *MaintenanceManager) RegisterJobPurge(interval, retention time.Duration, purge func(ctx context.Context, cutoff time.Time) (int64, error)) error {
	return m.register("job-purge", interval, BatchJobFunc(func(ctx context.Context) (int, error) {
		n, err := purge(ctx, time.Now().UTC().Add(-retention))
		return int(n), err
	}), "job", "purge")
}

func (m *MaintenanceManager) register(name string, interval time.Duration, batch BatchJob, tags ...string) error {
	timeout := interval
	if timeout > 10*time.Minute {
		timeout = 10 * time.Minute
	}
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			m.process(ctx, name, batch)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(tags...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	m.logger.Infow("registered maintenance job", "name", name, "interval", interval)
	return nil
}

func (m *MaintenanceManager) process(ctx context.Context, name string, batch BatchJob) {
	startTime := time.Now()
	count, err := batch.Execute(ctx)
	if err != nil {
		m.logger.Errorw("maintenance job failed",
			"name", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		m.logger.Infow("maintenance job processed items",
			"name", name,
			"count", count,
			"duration", time.Since(startTime),
		)
		return
	}
	m.logger.Debugw("maintenance job found nothing to do", "name", name)
}

// Start starts the scheduler and all registered jobs.
func (m *MaintenanceManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("maintenance manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down, waiting for running jobs.
func (m *MaintenanceManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}
	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("maintenance manager shutdown with error", "error", err)
		return err
	}
	m.logger.Infow("maintenance manager stopped")
	return nil
}

func (m *MaintenanceManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *MaintenanceManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
