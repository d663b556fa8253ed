package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/applytrack/applytrack/docs"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
	"github.com/applytrack/applytrack/internal/interfaces/http/routes"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	cfg := c.cfg

	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log.Named("http")))
	c.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.ClientIP(utils.ClientIPResolver{
		TrustedProxyHeader: cfg.RateLimit.TrustedProxyHeader,
		CDNHeader:          cfg.RateLimit.CDNHeader,
	}))

	c.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if c.hdlrs.healthHandler != nil {
		c.engine.GET("/health", c.hdlrs.healthHandler.Health)
	}
	c.engine.GET("/metrics", gin.WrapH(c.metrics.Handler()))

	api := c.engine.Group("/api/v1")
	api.Use(middleware.APIVersion())

	routes.SetupFeatureRoutes(api, &routes.FeatureRouteConfig{
		FeatureHandler: c.hdlrs.featureHandler,
		AuthMiddleware: c.authMiddleware,
	})
	routes.SetupPreviewRoutes(api, &routes.PreviewRouteConfig{
		PreviewHandler: c.hdlrs.previewHandler,
		AuthMiddleware: c.authMiddleware,
	})
	routes.SetupUsageRoutes(api, &routes.UsageRouteConfig{
		UsageHandler:   c.hdlrs.usageHandler,
		AuthMiddleware: c.authMiddleware,
	})
}
