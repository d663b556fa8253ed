package quota

import "strings"

// Tier selects the quota row for a request. It is resolved once, at the
// request boundary, and passed down; nothing below the boundary inspects
// plan strings.
type Tier string

const (
	TierFree    Tier = "free"
	TierAICoach Tier = "ai_coach"
	TierPro     Tier = "pro"

	// TierAnonymous is the per-IP guard applied to unauthenticated traffic.
	// It is never produced by ParseTier.
	TierAnonymous Tier = "anonymous"
)

var allTiers = []Tier{TierFree, TierAICoach, TierPro, TierAnonymous}

// AllTiers returns every tier the policy table must cover.
func AllTiers() []Tier {
	out := make([]Tier, len(allTiers))
	copy(out, allTiers)
	return out
}

// SubscriptionTiers returns the tiers an authenticated user can hold.
func SubscriptionTiers() []Tier {
	return []Tier{TierFree, TierAICoach, TierPro}
}

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierAICoach, TierPro, TierAnonymous:
		return true
	}
	return false
}

func (t Tier) IsPaid() bool {
	return t == TierAICoach || t == TierPro
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier maps the plan string carried by the auth or billing provider
// ("AI Coach", "ai-coach", "PRO", ...) to a subscription tier. Anything
// unrecognised, including the empty string, is the free tier.
func ParseTier(plan string) Tier {
	normalized := strings.ToLower(strings.TrimSpace(plan))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	switch normalized {
	case "ai_coach", "aicoach", "coach":
		return TierAICoach
	case "pro", "professional":
		return TierPro
	default:
		return TierFree
	}
}
