// Package ratelimit implements the durable counter store behind the rate
// limit engine: a true sliding window (sorted set of hit timestamps) and a
// fixed bucket counter, each applied atomically in one store round trip.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

var ErrStoreUnavailable = errors.New("counter store unavailable")

// CounterResult is the state of a counter after an operation.
type CounterResult struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// CounterStore is the durable counter collaborator. Increment must check
// and consume in one atomic step; Peek must not mutate.
type CounterStore interface {
	Increment(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error)
	Peek(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}

// FixedWindowStart returns the start of the fixed bucket containing now.
func FixedWindowStart(now time.Time, window time.Duration) time.Time {
	w := window.Milliseconds()
	ms := now.UnixMilli()
	return time.UnixMilli(ms - ms%w).UTC()
}

func newResult(allowed bool, count, limit int, resetAt time.Time) *CounterResult {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &CounterResult{
		Allowed:   allowed,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt.UTC(),
	}
}
