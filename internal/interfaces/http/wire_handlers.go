package http

import (
	"context"

	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	jobHandler         *handlers.JobHandler
	poolHandler        *handlers.PoolHandler
	entitlementHandler *handlers.EntitlementHandler
	consumerHandler    *handlers.ConsumerHandler
	healthHandler      *handlers.HealthHandler
}

func (c *Container) newHandlers() *allHandlers {
	log := c.log
	repos := c.worker.Repos
	engine := c.worker.Engine

	submitUC := usecases.NewSubmitJobUseCase(repos.Jobs, repos.Owners, repos.Consumers, log, c.worker.SubmitNotifiers()...)
	listUC := usecases.NewListJobsUseCase(repos.Jobs, log)
	getUC := usecases.NewGetJobUseCase(repos.Jobs, log)
	cancelUC := usecases.NewCancelJobUseCase(repos.Jobs, log)
	schedulerUC := usecases.NewSchedulerStatusUseCase(c.worker.Dispatcher, log)

	checks := map[string]handlers.Pinger{
		"database": handlers.PingerFunc(func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if c.redis != nil {
		checks["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	return &allHandlers{
		jobHandler:         handlers.NewJobHandler(submitUC, listUC, getUC, cancelUC, schedulerUC, log),
		poolHandler:        handlers.NewPoolHandler(engine, log),
		entitlementHandler: handlers.NewEntitlementHandler(engine, submitUC, log),
		consumerHandler:    handlers.NewConsumerHandler(engine, log),
		healthHandler:      handlers.NewHealthHandler(checks),
	}
}
