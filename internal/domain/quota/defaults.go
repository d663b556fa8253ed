package quota

import "time"

const day = 24 * time.Hour

// DefaultPolicies is the compiled-in policy table. A policy file may
// replace it wholesale.
func DefaultPolicies() []Policy {
	return []Policy{
		{FeatureJobFit, TierFree, 5, day, WindowSliding},
		{FeatureJobFit, TierAICoach, 40, day, WindowSliding},
		{FeatureJobFit, TierPro, 150, day, WindowSliding},
		{FeatureJobFit, TierAnonymous, 10, day, WindowFixed},

		{FeatureResumeReview, TierFree, 3, day, WindowSliding},
		{FeatureResumeReview, TierAICoach, 25, day, WindowSliding},
		{FeatureResumeReview, TierPro, 100, day, WindowSliding},
		{FeatureResumeReview, TierAnonymous, 5, day, WindowFixed},

		{FeatureCoverLetter, TierFree, 3, day, WindowSliding},
		{FeatureCoverLetter, TierAICoach, 30, day, WindowSliding},
		{FeatureCoverLetter, TierPro, 100, day, WindowSliding},
		{FeatureCoverLetter, TierAnonymous, 5, day, WindowFixed},

		{FeatureInterviewPrep, TierFree, 10, time.Hour, WindowSliding},
		{FeatureInterviewPrep, TierAICoach, 30, time.Hour, WindowSliding},
		{FeatureInterviewPrep, TierPro, 60, time.Hour, WindowSliding},
		{FeatureInterviewPrep, TierAnonymous, 10, day, WindowFixed},
	}
}
