package ai

import (
	"fmt"
	"strings"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

const baseInstruction = "You are a career coach helping a job seeker. " +
	"Answer in GitHub flavoured markdown. Start with a short summary paragraph " +
	"that stands on its own, then the detailed sections."

var featureInstructions = map[quota.Feature]string{
	quota.FeatureJobFit: "Assess how well the resume fits the job. Give a fit score from 0 to 100, " +
		"the strongest matching qualifications, the gaps and concrete next steps.",
	quota.FeatureResumeReview: "Review the resume. Cover structure, impact of bullet points, " +
		"missing keywords and formatting problems. Suggest rewritten bullets where useful.",
	quota.FeatureCoverLetter: "Write a tailored cover letter for the job using only facts from the resume. " +
		"Keep it under 400 words.",
	quota.FeatureInterviewPrep: "Prepare the candidate for an interview for this job. List likely questions, " +
		"what a strong answer covers, and questions to ask the interviewer.",
}

// BuildPrompt returns the system instruction and user prompt for a feature.
func BuildPrompt(f quota.Feature, in feature.Input) (string, string, error) {
	instruction, ok := featureInstructions[f]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", quota.ErrInvalidFeature, f)
	}

	var b strings.Builder
	section := func(title, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", title, body)
	}
	section("Job title", in.JobTitle)
	section("Company", in.CompanyName)
	section("Job description", in.JobDescription)
	section("Resume", in.ResumeText)
	section("Additional notes", in.Notes)

	return baseInstruction + "\n\n" + instruction, strings.TrimSpace(b.String()), nil
}
