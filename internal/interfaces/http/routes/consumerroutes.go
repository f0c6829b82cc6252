package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/middleware"
)

// ConsumerRouteConfig holds dependencies for consumer, pool and entitlement routes.
type ConsumerRouteConfig struct {
	PoolHandler             *handlers.PoolHandler
	EntitlementHandler      *handlers.EntitlementHandler
	ConsumerHandler         *handlers.ConsumerHandler
	AuthorizationMiddleware *middleware.AuthorizationMiddleware
}

// SetupConsumerRoutes configures consumer topology, binding and pool lookups.
func SetupConsumerRoutes(engine *gin.Engine, cfg *ConsumerRouteConfig) {
	authorize := cfg.AuthorizationMiddleware.Authorize()

	consumers := engine.Group("/consumers/:consumer_uuid")
	{
		consumers.GET("", cfg.ConsumerHandler.GetConsumer)
		consumers.PUT("", authorize, cfg.ConsumerHandler.UpdateConsumer)
		consumers.GET("/guests", cfg.ConsumerHandler.ListGuests)
		consumers.GET("/pools", cfg.PoolHandler.ListConsumerPools)
		consumers.GET("/entitlements", cfg.EntitlementHandler.ListEntitlements)
		consumers.POST("/entitlements", authorize, cfg.EntitlementHandler.Consume)
	}

	engine.GET("/pools/:pool_id", cfg.PoolHandler.GetPool)
	engine.DELETE("/entitlements/:entitlement_id", authorize, cfg.EntitlementHandler.Unbind)
}
