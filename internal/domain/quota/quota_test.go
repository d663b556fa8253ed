package quota

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoliciesFormCompleteTable(t *testing.T) {
	table, err := NewPolicyTable(DefaultPolicies())
	require.NoError(t, err)

	for _, f := range AllFeatures() {
		for _, tier := range AllTiers() {
			p, err := table.Lookup(f, tier)
			require.NoError(t, err, "%s/%s", f, tier)
			assert.Positive(t, p.Limit)
			assert.Equal(t, f, p.Feature)
			assert.Equal(t, tier, p.Tier)
		}
	}
	assert.Len(t, table.Policies(), len(AllFeatures())*len(AllTiers()))
}

func TestNewPolicyTable_ReportsMissingPairs(t *testing.T) {
	var policies []Policy
	for _, p := range DefaultPolicies() {
		if p.Feature == FeatureCoverLetter && p.Tier == TierPro {
			continue
		}
		policies = append(policies, p)
	}

	_, err := NewPolicyTable(policies)
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))

	var report *IncompleteTableError
	require.ErrorAs(t, err, &report)
	assert.Equal(t, []string{"cover_letter/pro"}, report.Missing)
}

func TestNewPolicyTable_RejectsDuplicatesAndInvalid(t *testing.T) {
	policies := append(DefaultPolicies(),
		Policy{FeatureJobFit, TierFree, 7, time.Hour, WindowSliding},
		Policy{FeatureJobFit, TierPro, 0, time.Hour, WindowSliding},
	)

	_, err := NewPolicyTable(policies)
	require.Error(t, err)

	var report *IncompleteTableError
	require.ErrorAs(t, err, &report)
	assert.Equal(t, []string{"job_fit/free"}, report.Duplicates)
	require.Len(t, report.Invalid, 1)
	assert.ErrorIs(t, report.Invalid[0], ErrInvalidPolicy)
}

func TestLookup_InvalidPair(t *testing.T) {
	table, err := NewPolicyTable(DefaultPolicies())
	require.NoError(t, err)

	_, err = table.Lookup(Feature("salary_negotiation"), TierPro)
	assert.ErrorIs(t, err, ErrPolicyNotConfigured)
}

func TestParseTier(t *testing.T) {
	tests := map[string]Tier{
		"AI Coach":   TierAICoach,
		"ai-coach":   TierAICoach,
		"ai_coach":   TierAICoach,
		"PRO":        TierPro,
		" pro ":      TierPro,
		"":           TierFree,
		"free":       TierFree,
		"enterprise": TierFree,
		"anonymous":  TierFree,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseTier(in), "ParseTier(%q)", in)
	}
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("job-fit")
	require.NoError(t, err)
	assert.Equal(t, FeatureJobFit, f)

	f, err = ParseFeature("cover_letter")
	require.NoError(t, err)
	assert.Equal(t, FeatureCoverLetter, f)

	_, err = ParseFeature("")
	assert.ErrorIs(t, err, ErrInvalidFeature)
}

func TestNewAnonymousIdentity(t *testing.T) {
	id, err := NewAnonymousIdentity("  fp1 ", "")
	require.NoError(t, err)
	assert.Equal(t, "fp1", id.Fingerprint())
	assert.Equal(t, UnknownIP, id.IPAddress())
	assert.False(t, id.HasKnownIP())

	_, err = NewAnonymousIdentity("   ", "203.0.113.7")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)

	_, err = NewAnonymousIdentity(strings.Repeat("x", MaxFingerprintLength+1), "203.0.113.7")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)

	id, err = NewAnonymousIdentity("fp2", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, Subject{Kind: SubjectIP, Value: "203.0.113.7"}, id.IPSubject())
}

func TestSubjectValidate(t *testing.T) {
	assert.NoError(t, Subject{Kind: SubjectUser, Value: "u1"}.Validate())
	assert.ErrorIs(t, Subject{Kind: SubjectUser}.Validate(), ErrInvalidSubject)
	assert.ErrorIs(t, Subject{Kind: "device", Value: "x"}.Validate(), ErrInvalidSubject)

	_, err := NewAuthenticatedIdentity(" ", "a@b.c")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}
