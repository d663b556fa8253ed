package http

import (
	"context"
	"fmt"

	featureUsecases "github.com/applytrack/applytrack/internal/application/feature/usecases"
	previewUsecases "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/infrastructure/ai"
	"github.com/applytrack/applytrack/internal/infrastructure/encryption"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Feature
	runFeatureUC        *featureUsecases.RunFeatureUseCase
	getUsageSummaryUC   *featureUsecases.GetUsageSummaryUseCase
	getAnonymousUsageUC *featureUsecases.GetAnonymousUsageUseCase

	// Preview
	createPreviewUC  *previewUsecases.CreatePreviewSessionUseCase
	convertPreviewUC *previewUsecases.ConvertPreviewSessionUseCase
	getPreviewUC     *previewUsecases.GetPreviewSessionUseCase

	markdown markdown.Service
}

// ============================================================
// Section 3: Use cases
// ============================================================

func (c *Container) initUseCases() error {
	cfg := c.cfg
	log := c.log

	cipher, err := encryption.NewContentCipher(cfg.Encryption.ContentKey)
	if err != nil {
		return fmt.Errorf("preview content key: %w", err)
	}

	generator, err := ai.NewGenerator(context.Background(), &cfg.AI, log.Named("ai"))
	if err != nil {
		return fmt.Errorf("ai generator: %w", err)
	}

	md := markdown.NewService()
	ucs := &allUseCases{markdown: md}

	ucs.createPreviewUC = previewUsecases.NewCreatePreviewSessionUseCase(
		c.repos.previewSessionRepo, cipher, md, cfg.Preview.TeaserChars, log.Named("preview"),
	)
	ucs.convertPreviewUC = previewUsecases.NewConvertPreviewSessionUseCase(
		c.repos.previewSessionRepo, cipher, c.metrics, log.Named("preview"),
	)
	ucs.getPreviewUC = previewUsecases.NewGetPreviewSessionUseCase(c.repos.previewSessionRepo, md, log.Named("preview"))

	ucs.runFeatureUC = featureUsecases.NewRunFeatureUseCase(
		c.rateLimits,
		c.allowances,
		c.ledger,
		generator,
		ucs.createPreviewUC,
		c.metrics,
		log.Named("feature"),
	)
	ucs.getUsageSummaryUC = featureUsecases.NewGetUsageSummaryUseCase(c.rateLimits, c.allowances, log.Named("usage"))
	ucs.getAnonymousUsageUC = featureUsecases.NewGetAnonymousUsageUseCase(c.ledger)

	c.ucs = ucs
	return nil
}
