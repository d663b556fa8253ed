package http

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

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

const (
	counterStoreRedis  = "redis"
	counterStoreMemory = "memory"

	redisPingTimeout = 3 * time.Second
)

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Auth
// ============================================================

func (c *Container) initInfrastructure() {
	cfg := c.cfg

	if strings.EqualFold(cfg.RateLimit.Store, counterStoreRedis) {
		c.redis = initRedis(cfg, c.log)
	}

	c.repos = newRepositories(c.db)

	c.jwtSvc = auth.NewJWTService(&cfg.Auth)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, cfg.Auth.CookieName, c.log)
}

// initRedis creates the Redis client. An unreachable Redis is not fatal:
// the counter store reports itself unavailable and the gates fail open.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.GetAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable at startup, rate limits will fail open until it recovers",
			"addr", cfg.Redis.GetAddr(), "error", err)
	} else {
		log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())
	}

	return redisClient
}

// ============================================================
// Section 2: Usage gates - Policies, Counter store, Engines
// ============================================================

func (c *Container) initUsage() error {
	cfg := c.cfg
	log := c.log

	tables, err := quotaconfig.Load(cfg.Quota.PolicyFile)
	if err != nil {
		return err
	}
	c.tables = tables

	c.metrics = metrics.NewUsageMetrics()

	if c.redis != nil {
		c.counterStore = ratelimit.NewRedisCounterStore(c.redis)
		c.snapshotCache = cache.NewRedisAllowanceSnapshotCache(c.redis, cfg.RateLimit.KeyPrefix, cfg.Cache.AllowanceTTL, log)
	} else {
		// Per-process counters: limits are only exact with a single replica.
		log.Warnw("using in-memory counter store", "configured_store", cfg.RateLimit.Store)
		c.counterStore = ratelimit.NewMemoryCounterStore()
	}

	c.rateLimits = usage.NewRateLimitEngine(
		tables.Policies,
		c.counterStore,
		ratelimit.NewKeyBuilder(cfg.RateLimit.KeyPrefix),
		cfg.RateLimit.Enabled,
		c.metrics,
		log,
	)
	c.allowances = usage.NewAllowanceEngine(tables.Grants, c.repos.allowanceRepo, c.snapshotCache, c.metrics, log)
	c.ledger = usage.NewAnonymousLedger(c.repos.anonUsageRepo, c.metrics, log)

	log.Infow("usage gates initialized",
		"counter_store", c.counterStore.Name(),
		"rate_limit_enabled", cfg.RateLimit.Enabled,
		"policy_file", cfg.Quota.PolicyFile,
	)
	return nil
}
