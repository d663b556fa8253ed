package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

// StaticGenerator returns a canned result built from the input. It backs the
// "static" provider used in local development and tests.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (StaticGenerator) Generate(ctx context.Context, f quota.Feature, in feature.Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := featureInstructions[f]; !ok {
		return "", fmt.Errorf("%w: %q", quota.ErrInvalidFeature, f)
	}

	title := in.JobTitle
	if title == "" {
		title = "the role"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Preview %s result for %s.\n\n", strings.ReplaceAll(f.String(), "_", " "), title)
	b.WriteString("## Details\n\n")
	if in.JobDescription != "" {
		fmt.Fprintf(&b, "- job description: %d characters\n", len([]rune(in.JobDescription)))
	}
	if in.ResumeText != "" {
		fmt.Fprintf(&b, "- resume: %d characters\n", len([]rune(in.ResumeText)))
	}
	return b.String(), nil
}
