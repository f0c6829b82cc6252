package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/middleware"
)

// JobRouteConfig holds dependencies for job routes.
type JobRouteConfig struct {
	JobHandler              *handlers.JobHandler
	AuthorizationMiddleware *middleware.AuthorizationMiddleware
}

// SetupJobRoutes configures job inspection, cancellation and the scheduler switch.
func SetupJobRoutes(engine *gin.Engine, cfg *JobRouteConfig) {
	jobs := engine.Group("/jobs")
	{
		jobs.GET("", cfg.JobHandler.ListJobs)

		// Named endpoints before /:job_id
		jobs.GET("/scheduler", cfg.JobHandler.GetScheduler)
		jobs.POST("/scheduler", cfg.AuthorizationMiddleware.Authorize(), cfg.JobHandler.SetScheduler)

		jobs.GET("/:job_id", cfg.JobHandler.GetJob)
		jobs.POST("/:job_id/cancel", cfg.AuthorizationMiddleware.Authorize(), cfg.JobHandler.CancelJob)
	}
}
