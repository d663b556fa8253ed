package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/interfaces/http/handlers"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
)

// PreviewRouteConfig holds dependencies for preview session routes.
type PreviewRouteConfig struct {
	PreviewHandler *handlers.PreviewHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupPreviewRoutes configures preview session routes.
func SetupPreviewRoutes(api *gin.RouterGroup, cfg *PreviewRouteConfig) {
	previews := api.Group("/preview-sessions")
	{
		// Specific named endpoints (must come BEFORE /:id)
		previews.POST("/convert", cfg.AuthMiddleware.RequireAuth(), cfg.PreviewHandler.Convert)

		previews.GET("/:id", cfg.PreviewHandler.Get)
	}
}
