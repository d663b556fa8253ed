package quota

import "fmt"

// Feature is an AI feature gated by quotas.
type Feature string

const (
	FeatureJobFit        Feature = "job_fit"
	FeatureResumeReview  Feature = "resume_review"
	FeatureCoverLetter   Feature = "cover_letter"
	FeatureInterviewPrep Feature = "interview_prep"
)

var allFeatures = []Feature{
	FeatureJobFit,
	FeatureResumeReview,
	FeatureCoverLetter,
	FeatureInterviewPrep,
}

// AllFeatures returns every gated feature in display order.
func AllFeatures() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

func (f Feature) IsValid() bool {
	for _, known := range allFeatures {
		if f == known {
			return true
		}
	}
	return false
}

func (f Feature) String() string {
	return string(f)
}

// ParseFeature accepts the wire name of a feature, also in its kebab-case
// route form ("job-fit").
func ParseFeature(s string) (Feature, error) {
	f := Feature(kebabToSnake(s))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeature, s)
	}
	return f, nil
}

func kebabToSnake(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}
