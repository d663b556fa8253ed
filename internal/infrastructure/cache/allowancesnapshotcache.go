package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// AllowanceSnapshotCache holds display-only copies of a user's one-shot
// usage counters. It is never consulted when deciding whether a consume is
// allowed.
type AllowanceSnapshotCache interface {
	// GetOrLoad returns the cached snapshot or calls load once per user
	// across concurrent callers and caches its result.
	GetOrLoad(ctx context.Context, userID string, load func(ctx context.Context) (map[quota.Feature]int, error)) (map[quota.Feature]int, error)
	Invalidate(ctx context.Context, userID string) error
}

const (
	allowanceKeySegment      = "allowance:v1:"
	defaultAllowanceTTL      = 5 * time.Minute
	allowanceNullMarkerTTL   = time.Minute
	allowanceFieldNullMarker = "_null"
)

type RedisAllowanceSnapshotCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger logger.Interface
}

func NewRedisAllowanceSnapshotCache(client redis.UniversalClient, prefix string, ttl time.Duration, logger logger.Interface) *RedisAllowanceSnapshotCache {
	if ttl <= 0 {
		ttl = defaultAllowanceTTL
	}
	return &RedisAllowanceSnapshotCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisAllowanceSnapshotCache) key(userID string) string {
	return c.prefix + ":" + allowanceKeySegment + userID
}

func (c *RedisAllowanceSnapshotCache) GetOrLoad(ctx context.Context, userID string, load func(ctx context.Context) (map[quota.Feature]int, error)) (map[quota.Feature]int, error) {
	snapshot, hit, err := c.get(ctx, userID)
	if err != nil {
		c.logger.Warnw("allowance snapshot cache read failed, loading from database",
			"user_id", userID,
			"error", err,
		)
	} else if hit {
		return snapshot, nil
	}

	v, err, _ := c.group.Do(userID, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.set(ctx, userID, loaded); err != nil {
			c.logger.Warnw("failed to cache allowance snapshot",
				"user_id", userID,
				"error", err,
			)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the map
	shared := v.(map[quota.Feature]int)
	out := make(map[quota.Feature]int, len(shared))
	for f, n := range shared {
		out[f] = n
	}
	return out, nil
}

func (c *RedisAllowanceSnapshotCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate allowance snapshot: %w", err)
	}

	c.logger.Debugw("allowance snapshot invalidated",
		"user_id", userID,
	)
	return nil
}

func (c *RedisAllowanceSnapshotCache) get(ctx context.Context, userID string) (map[quota.Feature]int, bool, error) {
	result, err := c.client.HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get allowance snapshot: %w", err)
	}
	if len(result) == 0 {
		return nil, false, nil
	}

	snapshot := make(map[quota.Feature]int, len(result))
	if result[allowanceFieldNullMarker] == "1" {
		return snapshot, true, nil
	}

	for field, raw := range result {
		f := quota.Feature(field)
		if !f.IsValid() {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt allowance snapshot field %s: %w", field, err)
		}
		snapshot[f] = n
	}
	return snapshot, true, nil
}

func (c *RedisAllowanceSnapshotCache) set(ctx context.Context, userID string, snapshot map[quota.Feature]int) error {
	key := c.key(userID)
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)

	if len(snapshot) == 0 {
		pipe.HSet(ctx, key, allowanceFieldNullMarker, "1")
		pipe.Expire(ctx, key, allowanceNullMarkerTTL)
	} else {
		fields := make(map[string]interface{}, len(snapshot))
		for f, n := range snapshot {
			fields[f.String()] = n
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, c.ttlWithJitter())
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set allowance snapshot: %w", err)
	}

	c.logger.Debugw("allowance snapshot cached",
		"user_id", userID,
		"features", len(snapshot),
	)
	return nil
}

// ttlWithJitter spreads expiry over [ttl, ttl*1.25).
func (c *RedisAllowanceSnapshotCache) ttlWithJitter() time.Duration {
	jitter := c.ttl / 4
	if jitter <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(rand.Int64N(int64(jitter)))
}
