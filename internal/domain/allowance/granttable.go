package allowance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// GrantTable holds the one-shot grants per feature and subscription tier.
// Features absent from the table are not allowance-gated.
type GrantTable struct {
	grants map[quota.Feature]map[quota.Tier]Grant
}

// NewGrantTable requires every listed feature to cover all subscription
// tiers.
func NewGrantTable(grants map[quota.Feature]map[quota.Tier]Grant) (*GrantTable, error) {
	var missing []string
	copied := make(map[quota.Feature]map[quota.Tier]Grant, len(grants))

	for feature, byTier := range grants {
		if !feature.IsValid() {
			return nil, fmt.Errorf("%w: %q", quota.ErrInvalidFeature, feature)
		}
		copied[feature] = make(map[quota.Tier]Grant, len(byTier))
		for _, tier := range quota.SubscriptionTiers() {
			g, ok := byTier[tier]
			if !ok {
				missing = append(missing, string(feature)+"/"+string(tier))
				continue
			}
			copied[feature][tier] = g
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrIncompleteGrantTable, strings.Join(missing, ", "))
	}
	return &GrantTable{grants: copied}, nil
}

// IsOneShot reports whether the feature is allowance-gated.
func (t *GrantTable) IsOneShot(feature quota.Feature) bool {
	_, ok := t.grants[feature]
	return ok
}

// Features returns the allowance-gated features in display order.
func (t *GrantTable) Features() []quota.Feature {
	var out []quota.Feature
	for _, f := range quota.AllFeatures() {
		if t.IsOneShot(f) {
			out = append(out, f)
		}
	}
	return out
}

// GrantFor returns the grant for a pair. Tiers outside the subscription
// tiers receive nothing.
func (t *GrantTable) GrantFor(feature quota.Feature, tier quota.Tier) (Grant, error) {
	byTier, ok := t.grants[feature]
	if !ok {
		return Grant{}, fmt.Errorf("%w: %s", ErrNotOneShot, feature)
	}
	g, ok := byTier[tier]
	if !ok {
		return Limited(0), nil
	}
	return g, nil
}

// DefaultGrants is the compiled-in grant table.
func DefaultGrants() map[quota.Feature]map[quota.Tier]Grant {
	return map[quota.Feature]map[quota.Tier]Grant{
		quota.FeatureResumeReview: {
			quota.TierFree:    Limited(1),
			quota.TierAICoach: Limited(10),
			quota.TierPro:     Unlimited(),
		},
		quota.FeatureCoverLetter: {
			quota.TierFree:    Limited(1),
			quota.TierAICoach: Limited(5),
			quota.TierPro:     Unlimited(),
		},
	}
}
