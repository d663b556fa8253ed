package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/config"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

const defaultGeminiModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("empty response from model")

type GeminiGenerator struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	temperature float32
	maxTokens   int32
	logger      logger.Interface
}

func NewGeminiGenerator(ctx context.Context, cfg *config.AIConfig, log logger.Interface) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, f quota.Feature, in feature.Input) (string, error) {
	system, prompt, err := BuildPrompt(f, in)
	if err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(g.temperature)
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		g.logger.Warnw("gemini generation failed",
			"feature", f,
			"model", g.model,
			"error", err,
		)
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	g.logger.Debugw("gemini generation completed",
		"feature", f,
		"model", g.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
