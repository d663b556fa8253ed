package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/interfaces/http/handlers"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
)

// UsageRouteConfig holds dependencies for usage routes.
type UsageRouteConfig struct {
	UsageHandler   *handlers.UsageHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupUsageRoutes configures usage reporting routes.
func SetupUsageRoutes(api *gin.RouterGroup, cfg *UsageRouteConfig) {
	usage := api.Group("/usage")
	{
		usage.GET("/anonymous", cfg.UsageHandler.GetAnonymousUsage)
		usage.GET("", cfg.AuthMiddleware.RequireAuth(), cfg.UsageHandler.GetUsage)
	}
}
