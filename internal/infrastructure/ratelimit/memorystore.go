package ratelimit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

const sweepEvery = 1024

type memEntry struct {
	hits      []int64 // sliding: hit times in ms, ascending
	count     int     // fixed
	expiresAt int64   // ms
}

// MemoryCounterStore is an in-process CounterStore with the same window
// semantics as RedisCounterStore. It serves single-instance deployments
// and tests; counters do not survive a restart.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	ops     int
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]*memEntry)}
}

func (s *MemoryCounterStore) Name() string { return "memory" }

func (s *MemoryCounterStore) IsAvailable(ctx context.Context) bool { return true }

func (s *MemoryCounterStore) Increment(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops++
	nowMs := now.UnixMilli()
	if s.ops%sweepEvery == 0 {
		s.sweep(nowMs)
	}

	windowMs := policy.Window.Milliseconds()
	e := s.entries[key]
	if e != nil && e.expiresAt <= nowMs {
		e = nil
	}
	if e == nil {
		e = &memEntry{}
		s.entries[key] = e
	}

	switch policy.WindowType {
	case quota.WindowSliding:
		e.hits = trimBefore(e.hits, nowMs-windowMs)
		allowed := len(e.hits) < policy.Limit
		if allowed {
			i := sort.Search(len(e.hits), func(i int) bool { return e.hits[i] > nowMs })
			e.hits = append(e.hits, 0)
			copy(e.hits[i+1:], e.hits[i:])
			e.hits[i] = nowMs
		}
		if len(e.hits) > 0 {
			e.expiresAt = nowMs + windowMs
		}
		return newResult(allowed, len(e.hits), policy.Limit, slidingReset(e.hits, nowMs, windowMs)), nil

	case quota.WindowFixed:
		e.count++
		if e.count == 1 {
			e.expiresAt = nowMs + windowMs
		}
		resetAt := FixedWindowStart(now, policy.Window).Add(policy.Window)
		return newResult(e.count <= policy.Limit, e.count, policy.Limit, resetAt), nil
	}
	return nil, fmt.Errorf("%w: window type %q", quota.ErrInvalidPolicy, policy.WindowType)
}

func (s *MemoryCounterStore) Peek(ctx context.Context, key string, policy quota.Policy, now time.Time) (*CounterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := now.UnixMilli()
	windowMs := policy.Window.Milliseconds()
	e := s.entries[key]
	if e != nil && e.expiresAt <= nowMs {
		e = nil
	}

	switch policy.WindowType {
	case quota.WindowSliding:
		var live []int64
		if e != nil {
			live = e.hits[sort.Search(len(e.hits), func(i int) bool { return e.hits[i] > nowMs-windowMs }):]
		}
		return newResult(len(live) < policy.Limit, len(live), policy.Limit, slidingReset(live, nowMs, windowMs)), nil

	case quota.WindowFixed:
		count := 0
		if e != nil {
			count = e.count
		}
		resetAt := FixedWindowStart(now, policy.Window).Add(policy.Window)
		return newResult(count < policy.Limit, count, policy.Limit, resetAt), nil
	}
	return nil, fmt.Errorf("%w: window type %q", quota.ErrInvalidPolicy, policy.WindowType)
}

// trimBefore drops hits at or before cutoff, matching ZREMRANGEBYSCORE
// -inf cutoff.
func trimBefore(hits []int64, cutoff int64) []int64 {
	i := sort.Search(len(hits), func(i int) bool { return hits[i] > cutoff })
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}

func slidingReset(hits []int64, nowMs, windowMs int64) time.Time {
	if len(hits) == 0 {
		return time.UnixMilli(nowMs + windowMs)
	}
	return time.UnixMilli(hits[0] + windowMs)
}

func (s *MemoryCounterStore) sweep(nowMs int64) {
	for k, e := range s.entries {
		if e.expiresAt <= nowMs {
			delete(s.entries, k)
		}
	}
}

// Len returns the number of tracked counters, including expired ones not
// yet swept.
func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
