package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/interfaces/http/handlers"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
)

// FeatureRouteConfig holds dependencies for feature routes.
type FeatureRouteConfig struct {
	FeatureHandler *handlers.FeatureHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupFeatureRoutes configures the gated feature routes. Both anonymous
// visitors and signed-in users may call them; the use case picks the gate.
func SetupFeatureRoutes(api *gin.RouterGroup, cfg *FeatureRouteConfig) {
	features := api.Group("/features")
	features.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		features.POST("/:feature", cfg.FeatureHandler.RunFeature)
		features.POST("/:feature/upload", cfg.FeatureHandler.RunFeatureWithUpload)
	}
}
