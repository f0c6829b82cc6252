package http

import (
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/middleware"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.Principal())
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.ErrorHandler(c.log))
	if len(c.cfg.Server.AllowedOrigins) > 0 {
		c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	}

	c.engine.GET("/health", c.hdlrs.healthHandler.Health)

	routes.SetupJobRoutes(c.engine, &routes.JobRouteConfig{
		JobHandler:              c.hdlrs.jobHandler,
		AuthorizationMiddleware: c.authMiddleware,
	})
	routes.SetupOwnerRoutes(c.engine, &routes.OwnerRouteConfig{
		JobHandler:              c.hdlrs.jobHandler,
		PoolHandler:             c.hdlrs.poolHandler,
		ConsumerHandler:         c.hdlrs.consumerHandler,
		AuthorizationMiddleware: c.authMiddleware,
	})
	routes.SetupConsumerRoutes(c.engine, &routes.ConsumerRouteConfig{
		PoolHandler:             c.hdlrs.poolHandler,
		EntitlementHandler:      c.hdlrs.entitlementHandler,
		ConsumerHandler:         c.hdlrs.consumerHandler,
		AuthorizationMiddleware: c.authMiddleware,
	})
}
