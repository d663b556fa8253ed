package allowance

import "github.com/applytrack/applytrack/internal/domain/quota"

// FeatureAllowance is the one-shot state of a feature for one user.
type FeatureAllowance struct {
	Feature   quota.Feature
	UsedCount int
	Granted   Grant
	CanUse    bool
}

func NewFeatureAllowance(feature quota.Feature, used int, granted Grant) FeatureAllowance {
	return FeatureAllowance{
		Feature:   feature,
		UsedCount: used,
		Granted:   granted,
		CanUse:    granted.Allows(used),
	}
}
