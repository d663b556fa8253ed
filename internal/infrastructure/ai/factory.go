package ai

import (
	"context"
	"fmt"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/shared/config"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// NewGenerator builds the generator for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.AIConfig, log logger.Interface) (feature.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg, log)
	case "static":
		return NewStaticGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
