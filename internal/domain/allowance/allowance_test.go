package allowance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

func TestGrant(t *testing.T) {
	one := Limited(1)
	assert.True(t, one.Allows(0))
	assert.False(t, one.Allows(1))
	rem, bounded := one.Remaining(0)
	assert.Equal(t, 1, rem)
	assert.True(t, bounded)

	inf := Unlimited()
	assert.True(t, inf.Allows(1<<40))
	_, bounded = inf.Remaining(5)
	assert.False(t, bounded)

	assert.Equal(t, 0, Limited(-3).Count())
}

func TestGrant_JSONUsesSentinel(t *testing.T) {
	b, err := json.Marshal(Unlimited())
	require.NoError(t, err)
	assert.JSONEq(t, `{"granted":null,"unlimited":true}`, string(b))

	b, err = json.Marshal(Limited(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"granted":3,"unlimited":false}`, string(b))
}

func TestGrantTable(t *testing.T) {
	table, err := NewGrantTable(DefaultGrants())
	require.NoError(t, err)

	assert.True(t, table.IsOneShot(quota.FeatureResumeReview))
	assert.False(t, table.IsOneShot(quota.FeatureJobFit))
	assert.Equal(t, []quota.Feature{quota.FeatureResumeReview, quota.FeatureCoverLetter}, table.Features())

	g, err := table.GrantFor(quota.FeatureResumeReview, quota.TierPro)
	require.NoError(t, err)
	assert.True(t, g.IsUnlimited())

	g, err = table.GrantFor(quota.FeatureResumeReview, quota.TierAnonymous)
	require.NoError(t, err)
	assert.False(t, g.Allows(0))

	_, err = table.GrantFor(quota.FeatureJobFit, quota.TierFree)
	assert.ErrorIs(t, err, ErrNotOneShot)
}

func TestNewGrantTable_MissingTier(t *testing.T) {
	_, err := NewGrantTable(map[quota.Feature]map[quota.Tier]Grant{
		quota.FeatureCoverLetter: {quota.TierFree: Limited(1)},
	})
	require.ErrorIs(t, err, ErrIncompleteGrantTable)
	assert.Contains(t, err.Error(), "cover_letter/ai_coach")
	assert.Contains(t, err.Error(), "cover_letter/pro")
}

func TestNewFeatureAllowance(t *testing.T) {
	a := NewFeatureAllowance(quota.FeatureCoverLetter, 1, Limited(1))
	assert.False(t, a.CanUse)

	a = NewFeatureAllowance(quota.FeatureCoverLetter, 7, Unlimited())
	assert.True(t, a.CanUse)
}
