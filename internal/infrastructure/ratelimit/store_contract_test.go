package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// runStoreContract exercises the behaviour every CounterStore must share.
// newKey must return a key unused by earlier subtests.
func runStoreContract(t *testing.T, store CounterStore, newKey func() string) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sliding := quota.Policy{Feature: quota.FeatureJobFit, Tier: quota.TierFree, Limit: 3, Window: time.Hour, WindowType: quota.WindowSliding}

	t.Run("sliding window edge", func(t *testing.T) {
		key := newKey()
		for i := 0; i < sliding.Limit; i++ {
			res, err := store.Increment(ctx, key, sliding, base)
			require.NoError(t, err)
			assert.True(t, res.Allowed, "request %d", i+1)
			assert.Equal(t, sliding.Limit-i-1, res.Remaining)
		}

		res, err := store.Increment(ctx, key, sliding, base.Add(sliding.Window-time.Millisecond))
		require.NoError(t, err)
		assert.False(t, res.Allowed, "just inside the window must be denied")
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, base.Add(sliding.Window), res.ResetAt)

		res, err = store.Increment(ctx, key, sliding, base.Add(sliding.Window+time.Millisecond))
		require.NoError(t, err)
		assert.True(t, res.Allowed, "just past the window must be allowed")
	})

	t.Run("sliding window has no boundary burst", func(t *testing.T) {
		key := newKey()
		// Fill the limit late in one hour, then try again right after the
		// top of the next hour. A fixed bucket would reset here.
		late := base.Add(59 * time.Minute)
		for i := 0; i < sliding.Limit; i++ {
			res, err := store.Increment(ctx, key, sliding, late)
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}
		res, err := store.Increment(ctx, key, sliding, base.Add(61*time.Minute))
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	t.Run("denied hits are not recorded", func(t *testing.T) {
		key := newKey()
		for i := 0; i < sliding.Limit+5; i++ {
			_, err := store.Increment(ctx, key, sliding, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
		}
		// The first hit at base leaves the window one hour later; only the
		// three allowed hits were stored, so a slot opens then.
		res, err := store.Increment(ctx, key, sliding, base.Add(time.Hour+time.Millisecond))
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("peek does not consume", func(t *testing.T) {
		key := newKey()
		_, err := store.Increment(ctx, key, sliding, base)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			res, err := store.Peek(ctx, key, sliding, base.Add(time.Minute))
			require.NoError(t, err)
			assert.Equal(t, 1, res.Count)
			assert.Equal(t, 2, res.Remaining)
			assert.Equal(t, base.Add(time.Hour), res.ResetAt)
		}
	})

	t.Run("peek on fresh key", func(t *testing.T) {
		res, err := store.Peek(ctx, newKey(), sliding, base)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Count)
		assert.Equal(t, sliding.Limit, res.Remaining)
	})

	t.Run("fixed window", func(t *testing.T) {
		fixed := quota.Policy{Feature: quota.FeatureJobFit, Tier: quota.TierAnonymous, Limit: 2, Window: time.Hour, WindowType: quota.WindowFixed}
		kb := NewKeyBuilder(newKey())
		subject := quota.Subject{Kind: quota.SubjectIP, Value: "203.0.113.7"}
		at := base.Add(10 * time.Minute)

		for i := 0; i < fixed.Limit; i++ {
			res, err := store.Increment(ctx, kb.Build(subject, fixed, at), fixed, at)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, base.Add(time.Hour), res.ResetAt)
		}
		res, err := store.Increment(ctx, kb.Build(subject, fixed, at), fixed, at)
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		next := base.Add(time.Hour)
		res, err = store.Increment(ctx, kb.Build(subject, fixed, next), fixed, next)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "new bucket starts empty")
	})

	t.Run("concurrent increments never exceed the limit", func(t *testing.T) {
		policy := quota.Policy{Feature: quota.FeatureCoverLetter, Tier: quota.TierFree, Limit: 10, Window: time.Hour, WindowType: quota.WindowSliding}
		key := newKey()

		var allowed, denied atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				res, err := store.Increment(ctx, key, policy, base.Add(time.Duration(i)*time.Millisecond))
				if !assert.NoError(t, err) {
					return
				}
				if res.Allowed {
					allowed.Add(1)
				} else {
					denied.Add(1)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(10), allowed.Load())
		assert.Equal(t, int32(15), denied.Load())
	})
}

func keySeq(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s:%d", prefix, n.Add(1))
	}
}
