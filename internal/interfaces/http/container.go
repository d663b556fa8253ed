package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/infrastructure/auth"
	"github.com/applytrack/applytrack/internal/infrastructure/cache"
	"github.com/applytrack/applytrack/internal/infrastructure/config"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	"github.com/applytrack/applytrack/internal/infrastructure/quotaconfig"
	"github.com/applytrack/applytrack/internal/infrastructure/ratelimit"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases and
// handlers. It wires everything together and owns Shutdown.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client
	version string

	// Repositories
	repos *repositories

	// Usage gates
	tables        *quotaconfig.Tables
	counterStore  ratelimit.CounterStore
	snapshotCache cache.AllowanceSnapshotCache
	metrics       *metrics.UsageMetrics
	rateLimits    *usage.RateLimitEngine
	allowances    *usage.AllowanceEngine
	ledger        *usage.AnonymousLedger

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	jwtSvc         *auth.JWTService
	authMiddleware *middleware.AuthMiddleware
}

// NewContainer creates a Container with all dependencies wired together.
// The order matters: infrastructure, then the usage gates, then use cases
// and handlers.
func NewContainer(db *gorm.DB, cfg *config.Config, version string, log logger.Interface) (*Container, error) {
	c := &Container{
		engine:  gin.New(),
		db:      db,
		cfg:     cfg,
		log:     log,
		version: version,
	}

	// Section 1: Infrastructure - Redis, Repositories, Auth
	c.initInfrastructure()

	// Section 2: Usage gates - Policies, Counter store, Engines
	if err := c.initUsage(); err != nil {
		return nil, err
	}

	// Section 3: Use cases
	if err := c.initUseCases(); err != nil {
		return nil, err
	}

	// Section 4: Handlers
	c.initHandlers()

	return c, nil
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// Shutdown releases connections owned by the container. The database is
// closed by the caller that opened it.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
