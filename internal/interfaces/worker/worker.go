// Package worker wires the pool engine, the job dispatcher and the periodic
// maintenance jobs. The HTTP server embeds it; the standalone worker binary
// runs it alone.
package worker

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	poolapp "github.com/orris-inc/poolkeeper/internal/application/pool"
	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/cache"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/config"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/pubsub"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/repository"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/scheduler"
	"github.com/orris-inc/poolkeeper/internal/shared/db"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// Repositories holds every repository used by the engine and the job use cases.
type Repositories struct {
	Owners        catalog.OwnerRepository
	Products      catalog.ProductRepository
	Subscriptions catalog.SubscriptionRepository
	Pools         pool.Repository
	Entitlements  entitlement.Repository
	Consumers     consumer.Repository
	Jobs          job.Repository
}

func NewRepositories(gdb *gorm.DB, log logger.Interface) *Repositories {
	return &Repositories{
		Owners:        repository.NewOwnerRepository(gdb, log),
		Products:      repository.NewProductRepository(gdb, log),
		Subscriptions: repository.NewSubscriptionRepository(gdb, log),
		Pools:         repository.NewPoolRepository(gdb, log),
		Entitlements:  repository.NewEntitlementRepository(gdb, log),
		Consumers:     repository.NewConsumerRepository(gdb, log),
		Jobs:          repository.NewJobRepository(gdb, log),
	}
}

type Worker struct {
	cfg   *config.Config
	redis *redis.Client
	log   logger.Interface

	Repos       *Repositories
	Engine      *poolapp.Engine
	Dispatcher  *scheduler.Dispatcher
	Maintenance *scheduler.MaintenanceManager

	jobBus  *pubsub.RedisJobEventBus
	poolBus *pubsub.RedisPoolEventBus
}

// New builds the worker. redisClient may be nil, in which case the scheduler
// flag and owner locks are process-local and no events are exchanged. With
// Redis the shared flag wins over scheduler.enabled_on_start.
func New(gdb *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Worker, error) {
	w := &Worker{
		cfg:   cfg,
		redis: redisClient,
		log:   log,
		Repos: NewRepositories(gdb, log),
	}

	var (
		flag   scheduler.Flag
		locker poolapp.OwnerLocker
		opts   []poolapp.Option
	)
	prefix := cfg.Redis.KeyPrefix
	if redisClient != nil {
		flag = cache.NewRedisSchedulerFlag(redisClient, prefix)
		locker = cache.NewRedisOwnerLocker(redisClient, prefix, cfg.Reconcile.LockTTL, log)
		w.jobBus = pubsub.NewRedisJobEventBus(redisClient, prefix, log)
		w.poolBus = pubsub.NewRedisPoolEventBus(redisClient, prefix, log)
		opts = append(opts, poolapp.WithEventPublisher(w.poolBus))
	} else {
		flag = scheduler.NewMemoryFlag(cfg.Scheduler.EnabledOnStart)
		locker = poolapp.NewKeyedLocker()
	}
	opts = append(opts, poolapp.WithLocker(locker))

	w.Engine = poolapp.NewEngine(
		w.Repos.Owners,
		w.Repos.Subscriptions,
		w.Repos.Products,
		w.Repos.Pools,
		w.Repos.Entitlements,
		w.Repos.Consumers,
		db.NewTransactionManager(gdb),
		log.Named("engine"),
		opts...,
	)

	w.Dispatcher = scheduler.NewDispatcher(w.Repos.Jobs, flag, scheduler.DispatcherConfig{
		Workers:      cfg.Scheduler.Workers,
		PollInterval: cfg.Scheduler.PollInterval,
		JobTimeout:   cfg.Scheduler.JobTimeout,
	}, log.Named("dispatcher"))
	w.Dispatcher.RegisterAll(w.Engine.Handlers())

	maintenance, err := scheduler.NewMaintenanceManager(log.Named("maintenance"))
	if err != nil {
		return nil, err
	}
	mc := cfg.Scheduler.Maintenance
	if err := maintenance.RegisterDevPoolExpiry(mc.DevPoolInterval, scheduler.BatchJobFunc(w.Engine.ExpireDevelopmentPools)); err != nil {
		return nil, err
	}
	if err := maintenance.RegisterJobPurge(mc.JobPurgeInterval, mc.JobRetention, w.Repos.Jobs.PurgeFinishedBefore); err != nil {
		return nil, err
	}
	w.Maintenance = maintenance

	return w, nil
}

// SubmitNotifiers are told about every stored job: the local dispatcher and,
// with Redis, dispatchers in other processes.
func (w *Worker) SubmitNotifiers() []usecases.SubmitNotifier {
	notifiers := []usecases.SubmitNotifier{w.Dispatcher}
	if w.jobBus != nil {
		notifiers = append(notifiers, w.jobBus)
	}
	return notifiers
}

// Run dispatches jobs and runs maintenance until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	w.Dispatcher.Start(ctx)
	w.Maintenance.Start()

	if w.jobBus != nil {
		g.Go(func() error {
			return ignoreCanceled(w.jobBus.SubscribeSubmitted(ctx, func(event pubsub.JobSubmittedEvent) {
				w.log.Debugw("job submitted elsewhere", "job_id", event.JobID, "owner_key", event.OwnerKey)
				w.Dispatcher.Notify()
			}))
		})
	}
	if w.poolBus != nil {
		g.Go(func() error {
			return ignoreCanceled(w.poolBus.Subscribe(ctx, func(event pool.ChangeEvent) {
				w.log.Infow("pool change",
					"owner_id", event.OwnerID,
					"operation", event.Operation,
					"created", len(event.CreatedPools),
					"updated", len(event.UpdatedPools),
					"deleted", len(event.DeletedPools),
				)
			}))
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		w.Dispatcher.Stop()
		return w.Maintenance.Stop()
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
