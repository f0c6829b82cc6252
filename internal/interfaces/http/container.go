package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	authz "github.com/orris-inc/poolkeeper/internal/infrastructure/authorization"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/config"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/middleware"
	"github.com/orris-inc/poolkeeper/internal/interfaces/worker"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

const shutdownTimeout = 30 * time.Second

// Container holds the gin engine, the worker it fronts and every handler.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	redis  *redis.Client
	cfg    *config.Config
	log    logger.Interface

	worker *worker.Worker
	hdlrs  *allHandlers

	authMiddleware *middleware.AuthorizationMiddleware
}

// NewContainer wires the worker, the job use cases and the HTTP handlers.
// redisClient may be nil.
func NewContainer(gdb *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     gdb,
		redis:  redisClient,
		cfg:    cfg,
		log:    log,
	}

	w, err := worker.New(gdb, redisClient, cfg, log)
	if err != nil {
		return nil, err
	}
	c.worker = w

	gate, err := authz.NewGate(cfg.Authorization, log.Named("authorization"))
	if err != nil {
		return nil, err
	}
	c.authMiddleware = middleware.NewAuthorizationMiddleware(gate, log)

	c.hdlrs = c.newHandlers()
	c.SetupRoutes()
	return c, nil
}

// Engine exposes the router, mainly for tests.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Run serves HTTP and, when scheduler.run_in_server is set, dispatches jobs in
// process. It returns after ctx is cancelled and everything has shut down.
func (c *Container) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         c.cfg.Server.GetAddr(),
		Handler:      c.engine,
		ReadTimeout:  c.cfg.Server.ReadTimeout,
		WriteTimeout: c.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Infow("server starting", "address", srv.Addr, "mode", c.cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		c.log.Infow("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	if c.cfg.Scheduler.RunInServer {
		g.Go(func() error { return c.worker.Run(ctx) })
	} else {
		c.log.Infow("job dispatch disabled in server; run the worker separately")
	}
	return g.Wait()
}
