package usecases

import (
	"context"

	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/quota"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
)

type AnonymousFeatureUsage struct {
	Feature quota.Feature
	Status  usage.LedgerStatus
}

// GetAnonymousUsageUseCase reports ledger state for the landing page. An
// empty feature returns every feature.
type GetAnonymousUsageUseCase struct {
	ledger *usage.AnonymousLedger
}

func NewGetAnonymousUsageUseCase(ledger *usage.AnonymousLedger) *GetAnonymousUsageUseCase {
	return &GetAnonymousUsageUseCase{ledger: ledger}
}

func (uc *GetAnonymousUsageUseCase) Execute(ctx context.Context, fingerprint string, f quota.Feature) ([]AnonymousFeatureUsage, error) {
	identity, err := quota.NewAnonymousIdentity(fingerprint, "")
	if err != nil {
		return nil, apperrors.NewValidationError("fingerprint is required", err.Error())
	}

	features := quota.AllFeatures()
	if f != "" {
		features = []quota.Feature{f}
	}

	out := make([]AnonymousFeatureUsage, 0, len(features))
	for _, feat := range features {
		status, err := uc.ledger.CanUse(ctx, identity, feat)
		if err != nil {
			return nil, err
		}
		out = append(out, AnonymousFeatureUsage{Feature: feat, Status: *status})
	}
	return out, nil
}
