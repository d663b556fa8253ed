package anonusage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

func TestNewRecord(t *testing.T) {
	id, err := quota.NewAnonymousIdentity("fp1", "203.0.113.7")
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	r, err := NewRecord(id, quota.FeatureJobFit, now)
	require.NoError(t, err)
	assert.Equal(t, "fp1", r.Fingerprint())
	assert.Equal(t, "203.0.113.7", r.IPAddress())
	assert.Equal(t, time.UTC, r.UsedAt().Location())

	_, err = NewRecord(id, quota.Feature("x"), now)
	assert.ErrorIs(t, err, quota.ErrInvalidFeature)

	_, err = NewRecord(quota.AnonymousIdentity{}, quota.FeatureJobFit, now)
	assert.ErrorIs(t, err, quota.ErrInvalidFingerprint)
}

func TestWindowUsage_ResetAt(t *testing.T) {
	assert.Nil(t, WindowUsage{}.ResetAt())

	oldest := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	reset := WindowUsage{Count: 1, Oldest: &oldest}.ResetAt()
	require.NotNil(t, reset)
	assert.Equal(t, oldest.Add(24*time.Hour), *reset)
}
