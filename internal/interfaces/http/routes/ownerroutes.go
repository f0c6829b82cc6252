package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/middleware"
)

type OwnerRouteConfig struct {
	JobHandler              *handlers.JobHandler
	PoolHandler             *handlers.PoolHandler
	ConsumerHandler         *handlers.ConsumerHandler
	AuthorizationMiddleware *middleware.AuthorizationMiddleware
}

func SetupOwnerRoutes(engine *gin.Engine, cfg *OwnerRouteConfig) {
	owners := engine.Group("/owners/:owner_key")
	{
		owners.GET("/pools", cfg.PoolHandler.ListOwnerPools)
		owners.GET("/consumers", cfg.ConsumerHandler.ListConsumers)

		mutating := owners.Group("")
		mutating.Use(cfg.AuthorizationMiddleware.Authorize())
		{
			mutating.POST("/refresh", cfg.JobHandler.RefreshPools)
			mutating.POST("/consumers", cfg.ConsumerHandler.RegisterConsumer)
		}
	}
}
