package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

func TestSessionLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession("ps_abc", quota.FeatureJobFit, feature.Input{JobDescription: "SRE"}, []byte{1, 2, 3}, "teaser", now)
	require.NoError(t, err)

	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.UserID())

	require.NoError(t, s.MarkConverted("user-a", now.Add(time.Hour)))
	assert.Equal(t, StateConverted, s.State())
	assert.Equal(t, "user-a", *s.UserID())
	assert.Equal(t, now.Add(time.Hour), *s.ConvertedAt())

	assert.ErrorIs(t, s.MarkConverted("user-b", now.Add(2*time.Hour)), ErrAlreadyConverted)
	assert.Equal(t, "user-a", *s.UserID())
}

func TestNewSession_Validation(t *testing.T) {
	now := time.Now()
	_, err := NewSession("", quota.FeatureJobFit, feature.Input{}, []byte{1}, "", now)
	assert.Error(t, err)

	_, err = NewSession("ps_x", quota.Feature("nope"), feature.Input{}, []byte{1}, "", now)
	assert.ErrorIs(t, err, quota.ErrInvalidFeature)

	_, err = NewSession("ps_x", quota.FeatureJobFit, feature.Input{}, nil, "", now)
	assert.Error(t, err)
}

func TestReconstructSession_RejectsHalfConverted(t *testing.T) {
	user := "user-a"
	_, err := ReconstructSession("ps_x", quota.FeatureJobFit, feature.Input{}, []byte{1}, "", &user, nil, time.Now())
	assert.Error(t, err)
}

func TestMarkConverted_EmptyUser(t *testing.T) {
	s, err := NewSession("ps_x", quota.FeatureJobFit, feature.Input{}, []byte{1}, "", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, s.MarkConverted(" ", time.Now()), quota.ErrInvalidUserID)
	assert.False(t, s.IsConverted())
}
