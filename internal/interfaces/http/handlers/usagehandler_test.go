package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	featureuc "github.com/applytrack/applytrack/internal/application/feature/usecases"
	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/interfaces/http/handlers/testutil"
	"github.com/applytrack/applytrack/internal/shared/errors"
)

type mockUsageSummaryUC struct {
	result *featureuc.UsageSummary
	err    error
	tier   quota.Tier
}

func (m *mockUsageSummaryUC) Execute(ctx context.Context, user quota.AuthenticatedIdentity, tier quota.Tier) (*featureuc.UsageSummary, error) {
	m.tier = tier
	return m.result, m.err
}

type mockAnonymousUsageUC struct {
	result      []featureuc.AnonymousFeatureUsage
	err         error
	fingerprint string
	feature     quota.Feature
}

func (m *mockAnonymousUsageUC) Execute(ctx context.Context, fingerprint string, f quota.Feature) ([]featureuc.AnonymousFeatureUsage, error) {
	m.fingerprint = fingerprint
	m.feature = f
	return m.result, m.err
}

func TestUsageHandler_GetUsage(t *testing.T) {
	summaryUC := &mockUsageSummaryUC{result: &featureuc.UsageSummary{
		Tier: quota.TierAICoach,
		Features: []quota.UsageStats{{
			Feature: quota.FeatureJobFit, Tier: quota.TierAICoach,
			Used: 3, Limit: 40, Remaining: 37,
			Window: 24 * time.Hour, WindowType: quota.WindowSliding,
			ResetAt: handlerNow.Add(24 * time.Hour),
		}},
		Allowances: []allowance.FeatureAllowance{
			allowance.NewFeatureAllowance(quota.FeatureResumeReview, 2, allowance.Limited(10)),
			allowance.NewFeatureAllowance(quota.FeatureCoverLetter, 0, allowance.Unlimited()),
		},
	}}
	h := NewUsageHandler(summaryUC, &mockAnonymousUsageUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage", nil)
	testutil.SetAuthContext(c, "u1", quota.TierAICoach)

	h.GetUsage(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, quota.TierAICoach, summaryUC.tier)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data UsageSummaryDTO
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "ai_coach", data.Tier)
	require.Len(t, data.Features, 1)
	assert.Equal(t, 37, data.Features[0].Remaining)
	require.Len(t, data.Allowances, 2)
	assert.EqualValues(t, 10, data.Allowances[0].Granted)
	assert.Equal(t, "unlimited", data.Allowances[1].Granted)
}

func TestUsageHandler_GetUsage_RequiresPrincipal(t *testing.T) {
	h := NewUsageHandler(&mockUsageSummaryUC{}, &mockAnonymousUsageUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage", nil)

	h.GetUsage(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsageHandler_GetAnonymousUsage(t *testing.T) {
	resetAt := handlerNow.Add(20 * time.Hour)
	anonUC := &mockAnonymousUsageUC{result: []featureuc.AnonymousFeatureUsage{{
		Feature: quota.FeatureJobFit,
		Status:  usage.LedgerStatus{CanUse: false, UsedCount: 1, ResetAt: &resetAt},
	}}}
	h := NewUsageHandler(&mockUsageSummaryUC{}, anonUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage/anonymous", nil)
	testutil.SetQueryParams(c, map[string]string{"fingerprint": "fp1", "feature": "job-fit"})

	h.GetAnonymousUsage(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fp1", anonUC.fingerprint)
	assert.Equal(t, quota.FeatureJobFit, anonUC.feature)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data []AnonymousUsageDTO
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data, 1)
	assert.False(t, data[0].CanUse)
	assert.EqualValues(t, 1, data[0].UsedCount)
	require.NotNil(t, data[0].ResetAt)
	assert.True(t, resetAt.Equal(*data[0].ResetAt))
}

func TestUsageHandler_GetAnonymousUsage_Errors(t *testing.T) {
	t.Run("unknown feature", func(t *testing.T) {
		h := NewUsageHandler(&mockUsageSummaryUC{}, &mockAnonymousUsageUC{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage/anonymous", nil)
		testutil.SetQueryParams(c, map[string]string{"fingerprint": "fp1", "feature": "nope"})

		h.GetAnonymousUsage(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fingerprint", func(t *testing.T) {
		anonUC := &mockAnonymousUsageUC{err: errors.NewValidationError("fingerprint is required")}
		h := NewUsageHandler(&mockUsageSummaryUC{}, anonUC, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage/anonymous", nil)

		h.GetAnonymousUsage(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
