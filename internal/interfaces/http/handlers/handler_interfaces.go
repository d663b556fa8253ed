package handlers

import (
	"context"

	featureuc "github.com/applytrack/applytrack/internal/application/feature/usecases"
	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

// Use case interfaces for FeatureHandler

type runFeatureUseCase interface {
	Execute(ctx context.Context, cmd featureuc.RunFeatureCommand) (*featureuc.RunFeatureResult, error)
}

type textExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Use case interfaces for PreviewHandler

type convertPreviewSessionUseCase interface {
	Execute(ctx context.Context, cmd previewuc.ConvertPreviewSessionCommand) (*previewuc.ConvertPreviewSessionResult, error)
}

type getPreviewSessionUseCase interface {
	Execute(ctx context.Context, sessionID string) (*previewuc.PreviewSessionView, error)
}

// Use case interfaces for UsageHandler

type getUsageSummaryUseCase interface {
	Execute(ctx context.Context, user quota.AuthenticatedIdentity, tier quota.Tier) (*featureuc.UsageSummary, error)
}

type getAnonymousUsageUseCase interface {
	Execute(ctx context.Context, fingerprint string, f quota.Feature) ([]featureuc.AnonymousFeatureUsage, error)
}

// Health checks

type databasePinger interface {
	PingContext(ctx context.Context) error
}

type counterStoreChecker interface {
	IsAvailable(ctx context.Context) bool
	Name() string
}
