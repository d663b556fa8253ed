package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/application/testutil"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
)

type countingSnapshotCache struct {
	loads         int
	invalidations []string
	snapshot      map[quota.Feature]int
}

func (c *countingSnapshotCache) GetOrLoad(ctx context.Context, userID string, load func(context.Context) (map[quota.Feature]int, error)) (map[quota.Feature]int, error) {
	if c.snapshot != nil {
		return c.snapshot, nil
	}
	c.loads++
	m, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = m
	return m, nil
}

func (c *countingSnapshotCache) Invalidate(ctx context.Context, userID string) error {
	c.invalidations = append(c.invalidations, userID)
	c.snapshot = nil
	return nil
}

func newAllowanceEngine(t *testing.T, repo allowance.Repository, cache *countingSnapshotCache) (*AllowanceEngine, *testutil.MockLogger) {
	t.Helper()
	grants, err := allowance.NewGrantTable(allowance.DefaultGrants())
	require.NoError(t, err)
	log := testutil.NewMockLogger()
	if cache == nil {
		return NewAllowanceEngine(grants, repo, nil, nil, log), log
	}
	return NewAllowanceEngine(grants, repo, cache, nil, log), log
}

func TestConsumeAllowance_IdempotentPerAction(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	e, _ := newAllowanceEngine(t, repo, nil)
	ctx := context.Background()

	require.NoError(t, e.ConsumeAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter, "act-1"))
	require.NoError(t, e.ConsumeAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter, "act-1"))

	fa, err := e.CheckAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, 1, fa.UsedCount)
	assert.True(t, fa.CanUse)
}

func TestConsumeAllowance_Exhausted(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	e, _ := newAllowanceEngine(t, repo, nil)
	ctx := context.Background()

	require.NoError(t, e.ConsumeAllowance(ctx, "user-a", quota.TierFree, quota.FeatureResumeReview, "act-1"))

	err := e.ConsumeAllowance(ctx, "user-a", quota.TierFree, quota.FeatureResumeReview, "act-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAllowanceExhausted))

	fa, err := e.CheckAllowance(ctx, "user-a", quota.TierFree, quota.FeatureResumeReview)
	require.NoError(t, err)
	assert.Equal(t, 1, fa.UsedCount)
	assert.False(t, fa.CanUse)
}

func TestConsumeAllowance_UnlimitedTier(t *testing.T) {
	e, _ := newAllowanceEngine(t, testutil.NewMockAllowanceRepository(), nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, e.ConsumeAllowance(ctx, "user-p", quota.TierPro, quota.FeatureResumeReview, id))
	}
	fa, err := e.CheckAllowance(ctx, "user-p", quota.TierPro, quota.FeatureResumeReview)
	require.NoError(t, err)
	assert.True(t, fa.CanUse)
	assert.True(t, fa.Granted.IsUnlimited())
	assert.Equal(t, 4, fa.UsedCount)
}

func TestConsumeAllowance_Validation(t *testing.T) {
	e, _ := newAllowanceEngine(t, testutil.NewMockAllowanceRepository(), nil)
	ctx := context.Background()

	err := e.ConsumeAllowance(ctx, "user-a", quota.TierFree, quota.FeatureCoverLetter, "")
	assert.True(t, apperrors.IsValidationError(err))

	err = e.ConsumeAllowance(ctx, "", quota.TierFree, quota.FeatureCoverLetter, "act")
	assert.True(t, apperrors.IsValidationError(err))

	err = e.ConsumeAllowance(ctx, "user-a", quota.TierFree, quota.FeatureJobFit, "act")
	assert.True(t, apperrors.IsValidationError(err), "job fit is not one-shot")
}

func TestCheckAllowance_FailsOpenOnReadError(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	repo.ReadErr = errors.New("connection reset by peer")
	e, log := newAllowanceEngine(t, repo, nil)

	fa, err := e.CheckAllowance(context.Background(), "user-a", quota.TierFree, quota.FeatureCoverLetter)
	require.NoError(t, err)
	assert.True(t, fa.CanUse)

	warns := log.EntriesAt("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "allowance.read", warns[0].Fields["operation"])
}

func TestGetAllAllowances_UsesSnapshotAndInvalidates(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	repo.SetUsage("user-a", quota.FeatureResumeReview, 1)
	cache := &countingSnapshotCache{}
	e, _ := newAllowanceEngine(t, repo, cache)
	ctx := context.Background()

	all, err := e.GetAllAllowances(ctx, "user-a", quota.TierFree)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[quota.FeatureResumeReview].UsedCount)
	assert.False(t, all[quota.FeatureResumeReview].CanUse)
	assert.True(t, all[quota.FeatureCoverLetter].CanUse)

	_, err = e.GetAllAllowances(ctx, "user-a", quota.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.loads)

	require.NoError(t, e.ConsumeAllowance(ctx, "user-a", quota.TierFree, quota.FeatureCoverLetter, "act-1"))
	assert.Equal(t, []string{"user-a"}, cache.invalidations)

	all, err = e.GetAllAllowances(ctx, "user-a", quota.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.loads)
	assert.False(t, all[quota.FeatureCoverLetter].CanUse)
}

func TestGetAllAllowances_WithoutCache(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	e, _ := newAllowanceEngine(t, repo, nil)

	all, err := e.GetAllAllowances(context.Background(), "user-a", quota.TierPro)
	require.NoError(t, err)
	assert.True(t, all[quota.FeatureCoverLetter].Granted.IsUnlimited())
	assert.Equal(t, 1, repo.Reads)
}

func TestReserveAllowance_ReportsReplays(t *testing.T) {
	e, _ := newAllowanceEngine(t, testutil.NewMockAllowanceRepository(), nil)
	ctx := context.Background()

	applied, err := e.ReserveAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter, "act-1")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = e.ReserveAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter, "act-1")
	require.NoError(t, err)
	assert.False(t, applied, "the same action id never takes a second unit")

	fa, err := e.CheckAllowance(ctx, "user-a", quota.TierAICoach, quota.FeatureCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, 1, fa.UsedCount)
}

func TestReleaseAllowance(t *testing.T) {
	repo := testutil.NewMockAllowanceRepository()
	cache := &countingSnapshotCache{}
	e, _ := newAllowanceEngine(t, repo, cache)
	ctx := context.Background()

	applied, err := e.ReserveAllowance(ctx, "user-a", quota.TierFree, quota.FeatureResumeReview, "act-1")
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, e.ReleaseAllowance(ctx, "user-a", quota.FeatureResumeReview, "act-1"))
	assert.Equal(t, 1, repo.Releases)
	assert.Equal(t, []string{"user-a", "user-a"}, cache.invalidations)

	fa, err := e.CheckAllowance(ctx, "user-a", quota.TierFree, quota.FeatureResumeReview)
	require.NoError(t, err)
	assert.Equal(t, 0, fa.UsedCount)
	assert.True(t, fa.CanUse)

	require.NoError(t, e.ReleaseAllowance(ctx, "user-a", quota.FeatureResumeReview, "act-1"))
	assert.Equal(t, 1, repo.Releases, "a second release is a no-op")

	err = e.ReleaseAllowance(ctx, "user-a", quota.FeatureResumeReview, "")
	assert.True(t, apperrors.IsValidationError(err))

	repo.ReleaseErr = errors.New("lock wait timeout")
	assert.Error(t, e.ReleaseAllowance(ctx, "user-a", quota.FeatureResumeReview, "act-2"))
}
