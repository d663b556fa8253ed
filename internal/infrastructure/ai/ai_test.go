package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/config"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

func TestBuildPrompt(t *testing.T) {
	in := feature.Input{
		JobTitle:       "SRE",
		JobDescription: "Run Kubernetes.",
		ResumeText:     "Ran Kubernetes.",
	}

	for _, f := range quota.AllFeatures() {
		t.Run(f.String(), func(t *testing.T) {
			system, prompt, err := BuildPrompt(f, in)
			require.NoError(t, err)
			assert.Contains(t, system, "markdown")
			assert.Contains(t, prompt, "## Job title\nSRE")
			assert.NotContains(t, prompt, "## Company")
		})
	}

	_, _, err := BuildPrompt(quota.Feature("salary_negotiation"), in)
	assert.ErrorIs(t, err, quota.ErrInvalidFeature)
}

func TestResponseText(t *testing.T) {
	t.Run("joins non-thought parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: "Fit score: 80"},
					{Text: "\n\nDetails"},
				}},
			}},
		}
		text, err := responseText(resp)
		require.NoError(t, err)
		assert.Equal(t, "Fit score: 80\n\nDetails", text)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrEmptyResponse)

		_, err = responseText(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}},
		})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewGenerator(t *testing.T) {
	log := logger.NewLogger()

	g, err := NewGenerator(context.Background(), &config.AIConfig{Provider: "static"}, log)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), quota.FeatureJobFit, feature.Input{JobTitle: "SRE", ResumeText: "cv"})
	require.NoError(t, err)
	assert.Contains(t, out, "Preview job fit result for SRE.")

	_, err = NewGenerator(context.Background(), &config.AIConfig{Provider: "gemini"}, log)
	assert.Error(t, err)

	_, err = NewGenerator(context.Background(), &config.AIConfig{Provider: "openai"}, log)
	assert.Error(t, err)
}
