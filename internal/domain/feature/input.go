package feature

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

const (
	maxShortField = 200
	maxLongField  = 20000
)

var ErrInvalidInput = errors.New("invalid feature input")

// Input holds the request parameters of a generation. It is stored with a
// preview session so a converted user sees what was asked.
type Input struct {
	JobTitle       string `json:"jobTitle,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	ResumeText     string `json:"resumeText,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Normalize trims every field.
func (in Input) Normalize() Input {
	return Input{
		JobTitle:       strings.TrimSpace(in.JobTitle),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		JobDescription: strings.TrimSpace(in.JobDescription),
		ResumeText:     strings.TrimSpace(in.ResumeText),
		Notes:          strings.TrimSpace(in.Notes),
	}
}

// Validate checks the fields the feature needs.
func (in Input) Validate(f quota.Feature) error {
	var problems []string

	need := func(name, v string) {
		if v == "" {
			problems = append(problems, name+" is required")
		}
	}
	switch f {
	case quota.FeatureJobFit, quota.FeatureCoverLetter:
		need("jobDescription", in.JobDescription)
		need("resumeText", in.ResumeText)
	case quota.FeatureResumeReview:
		need("resumeText", in.ResumeText)
	case quota.FeatureInterviewPrep:
		need("jobDescription", in.JobDescription)
	default:
		return fmt.Errorf("%w: %q", quota.ErrInvalidFeature, f)
	}

	for name, v := range map[string]string{"jobTitle": in.JobTitle, "companyName": in.CompanyName} {
		if utf8.RuneCountInString(v) > maxShortField {
			problems = append(problems, fmt.Sprintf("%s exceeds %d characters", name, maxShortField))
		}
	}
	for name, v := range map[string]string{"jobDescription": in.JobDescription, "resumeText": in.ResumeText, "notes": in.Notes} {
		if utf8.RuneCountInString(v) > maxLongField {
			problems = append(problems, fmt.Sprintf("%s exceeds %d characters", name, maxLongField))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
