package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// Trims hits that left the window, adds this hit only if there is room,
// and returns {allowed, count, resetAtMs}. A denied hit is never recorded.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  count = count + 1
  allowed = 1
end
if count > 0 then
  redis.call('PEXPIRE', key, window)
end

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`

const fixedWindowScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`

const defaultCooldown = 5 * time.Second

// RedisCounterStore keeps counters in Redis. After a failed call it reports
// itself unavailable for a cooldown so a dead Redis costs one timeout per
// cooldown instead of one per request.
type RedisCounterStore struct {
	client    redis.UniversalClient
	sliding   *redis.Script
	fixed     *redis.Script
	cooldown  time.Duration
	downUntil atomic.Int64
}

func NewRedisCounterStore(client redis.UniversalClient) *RedisCounterStore {
	return &RedisCounterStore{
		client:   client,
		sliding:  redis.NewScript(slidingWindowScript),
		fixed:    redis.NewScript(fixedWindowScript),
		cooldown: defaultCooldown,
	}
}

func (s *RedisCounterStore) Name() string { return "redis" }

func (s *RedisCounterStore) IsAvailable(ctx context.Context) bool {
	return time.Now().UnixNano() >= s.downUntil.Load()
}

func (s *RedisCounterStore) Increment(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	var (
		res *CounterResult
		err error
	)
	switch policy.WindowType {
	case quota.WindowSliding:
		res, err = s.incrementSliding(ctx, key, policy, now)
	case quota.WindowFixed:
		res, err = s.incrementFixed(ctx, key, policy, now)
	default:
		return nil, fmt.Errorf("%w: window type %q", quota.ErrInvalidPolicy, policy.WindowType)
	}
	if err != nil {
		s.observeFailure(err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, nil
}

func (s *RedisCounterStore) incrementSliding(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	vals, err := s.sliding.Run(ctx, s.client, []string{key},
		nowMs, policy.Window.Milliseconds(), policy.Limit, member).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("sliding window script: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("sliding window script: unexpected reply length %d", len(vals))
	}

	return newResult(vals[0] == 1, int(vals[1]), policy.Limit, time.UnixMilli(vals[2])), nil
}

func (s *RedisCounterStore) incrementFixed(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	count, err := s.fixed.Run(ctx, s.client, []string{key}, policy.Window.Milliseconds()).Int64()
	if err != nil {
		return nil, fmt.Errorf("fixed window script: %w", err)
	}

	resetAt := FixedWindowStart(now, policy.Window).Add(policy.Window)
	return newResult(count <= int64(policy.Limit), int(count), policy.Limit, resetAt), nil
}

func (s *RedisCounterStore) Peek(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	var (
		res *CounterResult
		err error
	)
	switch policy.WindowType {
	case quota.WindowSliding:
		res, err = s.peekSliding(ctx, key, policy, now)
	case quota.WindowFixed:
		res, err = s.peekFixed(ctx, key, policy, now)
	default:
		return nil, fmt.Errorf("%w: window type %q", quota.ErrInvalidPolicy, policy.WindowType)
	}
	if err != nil {
		s.observeFailure(err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, nil
}

func (s *RedisCounterStore) peekSliding(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	nowMs := now.UnixMilli()
	windowMs := policy.Window.Milliseconds()
	minScore := "(" + strconv.FormatInt(nowMs-windowMs, 10)

	pipe := s.client.Pipeline()
	countCmd := pipe.ZCount(ctx, key, minScore, "+inf")
	oldestCmd := pipe.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{Min: minScore, Max: "+inf", Count: 1})
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("sliding window peek: %w", err)
	}

	count := int(countCmd.Val())
	resetAt := now.Add(policy.Window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		resetAt = time.UnixMilli(int64(oldest[0].Score) + windowMs)
	}
	return newResult(count < policy.Limit, count, policy.Limit, resetAt), nil
}

func (s *RedisCounterStore) peekFixed(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("fixed window peek: %w", err)
	}
	resetAt := FixedWindowStart(now, policy.Window).Add(policy.Window)
	return newResult(count < policy.Limit, count, policy.Limit, resetAt), nil
}

// observeFailure opens the cooldown unless the caller simply went away.
func (s *RedisCounterStore) observeFailure(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.downUntil.Store(time.Now().Add(s.cooldown).UnixNano())
}
