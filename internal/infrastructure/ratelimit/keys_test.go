package ratelimit

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

func TestKeyBuilder_Layout(t *testing.T) {
	kb := NewKeyBuilder("applytrack")
	now := time.Date(2026, 3, 1, 12, 34, 0, 0, time.UTC)

	sliding := quota.Policy{Feature: quota.FeatureJobFit, Tier: quota.TierFree, Limit: 5, Window: 24 * time.Hour, WindowType: quota.WindowSliding}
	assert.Equal(t,
		"applytrack:rl:v1:user:u-1:job_fit:sliding:86400000",
		kb.Build(quota.Subject{Kind: quota.SubjectUser, Value: "u-1"}, sliding, now))

	fixed := quota.Policy{Feature: quota.FeatureJobFit, Tier: quota.TierAnonymous, Limit: 5, Window: time.Hour, WindowType: quota.WindowFixed}
	bucket := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t,
		"applytrack:rl:v1:ip:203.0.113.7:job_fit:fixed:3600000:"+strconv.FormatInt(bucket, 10),
		kb.Build(quota.Subject{Kind: quota.SubjectIP, Value: "203.0.113.7"}, fixed, now))
}

func TestKeyBuilder_NoCollisions(t *testing.T) {
	kb := NewKeyBuilder("applytrack")
	now := time.Now()

	subjects := []quota.Subject{
		{Kind: quota.SubjectUser, Value: "a"},
		{Kind: quota.SubjectUser, Value: "a:job_fit"},
		{Kind: quota.SubjectUser, Value: "a%3Ajob_fit"},
		{Kind: quota.SubjectUser, Value: "a:b"},
		{Kind: quota.SubjectUser, Value: "a%3Ab"},
		{Kind: quota.SubjectIP, Value: "a"},
		{Kind: quota.SubjectIP, Value: "::1"},
		{Kind: quota.SubjectIP, Value: "%3A%3A1"},
	}

	seen := make(map[string]string)
	for _, s := range subjects {
		for _, f := range quota.AllFeatures() {
			for _, wt := range []quota.WindowType{quota.WindowSliding, quota.WindowFixed} {
				p := quota.Policy{Feature: f, Tier: quota.TierFree, Limit: 1, Window: time.Hour, WindowType: wt}
				key := kb.Build(s, p, now)
				id := string(s.Kind) + "|" + s.Value + "|" + string(f) + "|" + string(wt)
				if prev, dup := seen[key]; dup {
					t.Fatalf("key %q produced by both %q and %q", key, prev, id)
				}
				seen[key] = id
			}
		}
	}
}

func TestFixedWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), FixedWindowStart(now, time.Hour))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), FixedWindowStart(now, 24*time.Hour))
}
