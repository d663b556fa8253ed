package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/application/testutil"
	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/ratelimit"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
)

const generated = "## Match\n\nYour Go background lines up with the role.\n\n## Next steps\n\nHighlight the Redis work."

type harness struct {
	run       *RunFeatureUseCase
	convert   *previewuc.ConvertPreviewSessionUseCase
	ledger    *usage.AnonymousLedger
	rate      *usage.RateLimitEngine
	allow     *usage.AllowanceEngine
	generator *testutil.MockGenerator
	anonRepo  *testutil.MockAnonUsageRepository
	allowRepo *testutil.MockAllowanceRepository
	previews  *testutil.MockPreviewSessionRepository
	cipher    *testutil.PlainCipher
	log       *testutil.MockLogger
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		generator: &testutil.MockGenerator{Content: generated},
		anonRepo:  testutil.NewMockAnonUsageRepository(),
		allowRepo: testutil.NewMockAllowanceRepository(),
		previews:  testutil.NewMockPreviewSessionRepository(),
		cipher:    &testutil.PlainCipher{},
		log:       testutil.NewMockLogger(),
		now:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	policies, err := quota.NewPolicyTable(quota.DefaultPolicies())
	require.NoError(t, err)
	grants, err := allowance.NewGrantTable(allowance.DefaultGrants())
	require.NoError(t, err)

	h.rate = usage.NewRateLimitEngine(policies, ratelimit.NewMemoryCounterStore(), ratelimit.NewKeyBuilder("t"), true, nil, h.log).WithClock(clock)
	h.allow = usage.NewAllowanceEngine(grants, h.allowRepo, nil, nil, h.log)
	h.ledger = usage.NewAnonymousLedger(h.anonRepo, nil, h.log).WithClock(clock)

	create := previewuc.NewCreatePreviewSessionUseCase(h.previews, h.cipher, markdown.NewService(), 14, h.log)
	h.run = NewRunFeatureUseCase(h.rate, h.allow, h.ledger, h.generator, create, nil, h.log)
	h.convert = previewuc.NewConvertPreviewSessionUseCase(h.previews, h.cipher, nil, h.log).WithClock(clock)
	return h
}

var jobFitInput = feature.Input{JobTitle: "Backend Engineer", JobDescription: "Go and Redis", ResumeText: "Six years of Go"}

func userCmd(f quota.Feature, tier quota.Tier, actionID string) RunFeatureCommand {
	return RunFeatureCommand{
		Feature:  f,
		Input:    jobFitInput,
		User:     &quota.AuthenticatedIdentity{UserID: "user-a", Email: "a@example.com"},
		Tier:     tier,
		ActionID: actionID,
	}
}

func anonCmd(fp string) RunFeatureCommand {
	return RunFeatureCommand{
		Feature:     quota.FeatureJobFit,
		Input:       jobFitInput,
		Fingerprint: fp,
		IPAddress:   "198.51.100.20",
	}
}

func TestRunFeature_AnonymousPreviewThenConvert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.run.Execute(ctx, anonCmd("fp1"))
	require.NoError(t, err)
	require.Nil(t, first.Denied)
	require.NotNil(t, first.Preview)
	assert.True(t, first.Preview.Locked)
	assert.Equal(t, "## Match", first.Preview.Teaser)
	assert.Empty(t, first.Content, "anonymous callers never get the full result inline")
	require.Len(t, h.anonRepo.Records(), 1)

	h.now = h.now.Add(2 * time.Hour)
	second, err := h.run.Execute(ctx, anonCmd("fp1"))
	require.NoError(t, err)
	require.NotNil(t, second.Denied)
	assert.Equal(t, DenialAnonymousLimit, second.Denied.Reason)
	assert.Equal(t, int64(1), second.Denied.UsedCount)
	require.NotNil(t, second.Denied.ResetAt)
	assert.Equal(t, h.now.Add(-2*time.Hour).Add(24*time.Hour), *second.Denied.ResetAt)
	assert.Equal(t, 1, h.generator.Calls)

	converted, err := h.convert.Execute(ctx, previewuc.ConvertPreviewSessionCommand{
		SessionID: first.Preview.SessionID,
		UserID:    "user-new",
	})
	require.NoError(t, err)
	assert.Equal(t, generated, converted.Analysis)
	assert.Equal(t, quota.FeatureJobFit, converted.FeatureType)
	assert.Equal(t, jobFitInput, converted.InputData)

	_, err = h.convert.Execute(ctx, previewuc.ConvertPreviewSessionCommand{
		SessionID: first.Preview.SessionID,
		UserID:    "user-other",
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAlreadyConverted))

	h.now = h.now.Add(23 * time.Hour)
	third, err := h.run.Execute(ctx, anonCmd("fp1"))
	require.NoError(t, err)
	assert.Nil(t, third.Denied, "the ledger window has rolled past the first use")
}

func TestRunFeature_AnonymousGenerationFailureRecordsNothing(t *testing.T) {
	h := newHarness(t)
	h.generator.Err = errors.New("upstream 503")

	_, err := h.run.Execute(context.Background(), anonCmd("fp1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable))
	assert.Empty(t, h.anonRepo.Records())

	h.generator.Err = nil
	res, err := h.run.Execute(context.Background(), anonCmd("fp1"))
	require.NoError(t, err)
	assert.Nil(t, res.Denied)
}

func TestRunFeature_AnonymousIPGuard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// job_fit allows 10 anonymous requests per IP per day.
	for i := 0; i < 10; i++ {
		res, err := h.run.Execute(ctx, anonCmd("fp-"+string(rune('a'+i))))
		require.NoError(t, err)
		require.Nil(t, res.Denied)
	}

	res, err := h.run.Execute(ctx, anonCmd("fp-fresh"))
	require.NoError(t, err)
	require.NotNil(t, res.Denied)
	assert.Equal(t, DenialRateLimited, res.Denied.Reason)
	assert.Equal(t, 10, res.Denied.Limit)

	cmd := anonCmd("fp-no-ip")
	cmd.IPAddress = ""
	res, err = h.run.Execute(ctx, cmd)
	require.NoError(t, err)
	assert.Nil(t, res.Denied, "unknown IPs skip the per-IP guard")
}

func TestRunFeature_AnonymousRequiresFingerprint(t *testing.T) {
	h := newHarness(t)

	_, err := h.run.Execute(context.Background(), anonCmd("  "))
	assert.True(t, apperrors.IsValidationError(err))
	assert.Zero(t, h.generator.Calls)
}

func TestRunFeature_AuthenticatedOneShot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierFree, "act-1"))
	require.NoError(t, err)
	require.Nil(t, res.Denied)
	assert.Equal(t, generated, res.Content)
	require.NotNil(t, res.Allowance)
	assert.Equal(t, 1, res.Allowance.UsedCount)
	assert.False(t, res.Allowance.CanUse)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 2, res.Usage.Remaining)

	res, err = h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierFree, "act-2"))
	require.NoError(t, err)
	require.NotNil(t, res.Denied)
	assert.Equal(t, DenialAllowanceExhausted, res.Denied.Reason)
	assert.Equal(t, 1, h.generator.Calls, "no generation once the allowance is spent")
}

func TestRunFeature_AuthenticatedGenerationFailureKeepsAllowance(t *testing.T) {
	h := newHarness(t)
	h.generator.Err = errors.New("deadline exceeded")

	_, err := h.run.Execute(context.Background(), userCmd(quota.FeatureResumeReview, quota.TierFree, "act-1"))
	require.Error(t, err)
	assert.Equal(t, 1, h.allowRepo.Releases)

	fa, err := h.allow.CheckAllowance(context.Background(), "user-a", quota.TierFree, quota.FeatureResumeReview)
	require.NoError(t, err)
	assert.Equal(t, 0, fa.UsedCount)
	assert.True(t, fa.CanUse)
}

func TestRunFeature_ReplayedActionIDGeneratesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// ai_coach has five cover letters, so only the action id can refuse this.
	first, err := h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierAICoach, "same-key"))
	require.NoError(t, err)
	require.Nil(t, first.Denied)
	assert.Equal(t, 1, first.Allowance.UsedCount)

	for i := 0; i < 3; i++ {
		_, err = h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierAICoach, "same-key"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	}
	assert.Equal(t, 1, h.generator.Calls)

	next, err := h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierAICoach, "other-key"))
	require.NoError(t, err)
	require.Nil(t, next.Denied)
	assert.Equal(t, 2, next.Allowance.UsedCount)
	assert.Equal(t, 2, h.generator.Calls)
}

func TestRunFeature_FailedGenerationFreesActionID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.generator.Err = errors.New("upstream 503")

	_, err := h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierFree, "retry-key"))
	require.Error(t, err)
	assert.Equal(t, 1, h.allowRepo.Releases)

	h.generator.Err = nil
	res, err := h.run.Execute(ctx, userCmd(quota.FeatureCoverLetter, quota.TierFree, "retry-key"))
	require.NoError(t, err)
	require.Nil(t, res.Denied)
	assert.Equal(t, 1, res.Allowance.UsedCount)
	assert.False(t, res.Allowance.CanUse)
}

func TestRunFeature_ReservationRaceDenies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// A concurrent request spends the last unit between check and reserve.
	h.run.allowances = usage.NewAllowanceEngine(mustGrants(t), &racingAllowanceRepo{MockAllowanceRepository: h.allowRepo}, nil, nil, h.log)

	res, err := h.run.Execute(ctx, userCmd(quota.FeatureResumeReview, quota.TierFree, "act-1"))
	require.NoError(t, err)
	require.NotNil(t, res.Denied)
	assert.Equal(t, DenialAllowanceExhausted, res.Denied.Reason)
	assert.Equal(t, int64(1), res.Denied.UsedCount)
	assert.Zero(t, h.generator.Calls)
}

func TestRunFeature_ReservationStoreErrorFailsOpen(t *testing.T) {
	h := newHarness(t)
	h.allowRepo.ConsumeErr = errors.New("too many connections")

	res, err := h.run.Execute(context.Background(), userCmd(quota.FeatureResumeReview, quota.TierFree, "act-1"))
	require.NoError(t, err)
	require.Nil(t, res.Denied)
	assert.Equal(t, generated, res.Content)
	assert.Equal(t, 0, res.Allowance.UsedCount)

	warns := h.log.EntriesAt("WARN")
	require.NotEmpty(t, warns)
	assert.Equal(t, "allowance.reserve", warns[len(warns)-1].Fields["operation"])
}

// racingAllowanceRepo lets the pre-check read zero and then finds the grant
// spent when the reservation runs.
type racingAllowanceRepo struct {
	*testutil.MockAllowanceRepository
}

func (r *racingAllowanceRepo) Consume(ctx context.Context, userID string, f quota.Feature, actionID string, grant allowance.Grant) (bool, error) {
	r.SetUsage(userID, f, grant.Count())
	return r.MockAllowanceRepository.Consume(ctx, userID, f, actionID, grant)
}

func mustGrants(t *testing.T) *allowance.GrantTable {
	t.Helper()
	grants, err := allowance.NewGrantTable(allowance.DefaultGrants())
	require.NoError(t, err)
	return grants
}

func TestRunFeature_AuthenticatedRateLimited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// interview_prep allows 10 per hour on free.
	for i := 0; i < 10; i++ {
		cmd := userCmd(quota.FeatureInterviewPrep, quota.TierFree, "")
		res, err := h.run.Execute(ctx, cmd)
		require.NoError(t, err)
		require.Nil(t, res.Denied)
		assert.Nil(t, res.Allowance)
	}

	res, err := h.run.Execute(ctx, userCmd(quota.FeatureInterviewPrep, quota.TierFree, ""))
	require.NoError(t, err)
	require.NotNil(t, res.Denied)
	assert.Equal(t, DenialRateLimited, res.Denied.Reason)
	assert.Equal(t, 0, res.Denied.Remaining)
	assert.Equal(t, 10, res.Denied.Limit)
	require.NotNil(t, res.Denied.ResetAt)
	assert.Equal(t, h.now.Add(time.Hour), *res.Denied.ResetAt)
	assert.Empty(t, h.log.EntriesAt("ERROR"))
}

func TestRunFeature_StoreOutageFailsOpen(t *testing.T) {
	h := newHarness(t)
	policies, err := quota.NewPolicyTable(quota.DefaultPolicies())
	require.NoError(t, err)
	h.run.rateLimits = usage.NewRateLimitEngine(policies, testutil.NewFailingCounterStore(), ratelimit.NewKeyBuilder("t"), true, nil, h.log)
	h.anonRepo.UsageErr = errors.New("too many connections")

	res, err := h.run.Execute(context.Background(), anonCmd("fp1"))
	require.NoError(t, err)
	assert.Nil(t, res.Denied)
	assert.Len(t, h.log.EntriesAt("WARN"), 2)
}

func TestRunFeature_InvalidInput(t *testing.T) {
	h := newHarness(t)

	cmd := userCmd(quota.FeatureJobFit, quota.TierPro, "")
	cmd.Input = feature.Input{JobTitle: "only a title"}
	_, err := h.run.Execute(context.Background(), cmd)
	assert.True(t, apperrors.IsValidationError(err))

	cmd.Feature = quota.Feature("salary_negotiation")
	_, err = h.run.Execute(context.Background(), cmd)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Zero(t, h.generator.Calls)
}
