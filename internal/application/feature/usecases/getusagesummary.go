package usecases

import (
	"context"

	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

type UsageSummary struct {
	Tier       quota.Tier
	Features   []quota.UsageStats
	Allowances []allowance.FeatureAllowance
}

// GetUsageSummaryUseCase builds the account usage page. It only reads and
// may serve cached allowance numbers.
type GetUsageSummaryUseCase struct {
	rateLimits *usage.RateLimitEngine
	allowances *usage.AllowanceEngine
	logger     logger.Interface
}

func NewGetUsageSummaryUseCase(rateLimits *usage.RateLimitEngine, allowances *usage.AllowanceEngine, logger logger.Interface) *GetUsageSummaryUseCase {
	return &GetUsageSummaryUseCase{rateLimits: rateLimits, allowances: allowances, logger: logger}
}

func (uc *GetUsageSummaryUseCase) Execute(ctx context.Context, user quota.AuthenticatedIdentity, tier quota.Tier) (*UsageSummary, error) {
	if !tier.IsValid() || tier == quota.TierAnonymous {
		tier = quota.TierFree
	}

	summary := &UsageSummary{Tier: tier}
	for _, f := range quota.AllFeatures() {
		stats, err := uc.rateLimits.GetUsageStats(ctx, user.Subject(), f, tier)
		if err != nil {
			return nil, err
		}
		summary.Features = append(summary.Features, *stats)
	}

	all, err := uc.allowances.GetAllAllowances(ctx, user.UserID, tier)
	if err != nil {
		uc.logger.Warnw("allowances unavailable for usage summary", "user_id", user.UserID, "error", err)
		return summary, nil
	}
	for _, f := range uc.allowances.OneShotFeatures() {
		if fa, ok := all[f]; ok {
			summary.Allowances = append(summary.Allowances, fa)
		}
	}
	return summary, nil
}
