package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/cache"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// AllowanceEngine manages the lifetime one-shot grants. Consumption is
// idempotent per action id and bounded by the grant in the repository. A
// unit is reserved before the gated work and released if that work fails.
type AllowanceEngine struct {
	grants  *allowance.GrantTable
	repo    allowance.Repository
	cache   cache.AllowanceSnapshotCache
	metrics *metrics.UsageMetrics
	logger  logger.Interface
}

// NewAllowanceEngine accepts a nil cache; display reads then go straight to
// the repository.
func NewAllowanceEngine(
	grants *allowance.GrantTable,
	repo allowance.Repository,
	snapshotCache cache.AllowanceSnapshotCache,
	m *metrics.UsageMetrics,
	log logger.Interface,
) *AllowanceEngine {
	return &AllowanceEngine{
		grants:  grants,
		repo:    repo,
		cache:   snapshotCache,
		metrics: m,
		logger:  log.With("component", "usage.allowance"),
	}
}

func (e *AllowanceEngine) IsOneShot(feature quota.Feature) bool {
	return e.grants.IsOneShot(feature)
}

// OneShotFeatures lists the allowance-gated features.
func (e *AllowanceEngine) OneShotFeatures() []quota.Feature {
	return e.grants.Features()
}

func (e *AllowanceEngine) grantFor(userID string, tier quota.Tier, feature quota.Feature) (allowance.Grant, error) {
	if userID == "" {
		return allowance.Grant{}, apperrors.NewValidationError("user id is required")
	}
	if !feature.IsValid() {
		return allowance.Grant{}, apperrors.NewValidationError("unknown feature", string(feature))
	}
	g, err := e.grants.GrantFor(feature, tier)
	if err != nil {
		return allowance.Grant{}, apperrors.NewValidationError("feature has no one-shot allowance", string(feature))
	}
	return g, nil
}

// CheckAllowance reports whether the user may use the feature once more. A
// failed read fails open.
func (e *AllowanceEngine) CheckAllowance(ctx context.Context, userID string, tier quota.Tier, feature quota.Feature) (*allowance.FeatureAllowance, error) {
	grant, err := e.grantFor(userID, tier, feature)
	if err != nil {
		return nil, err
	}

	used, err := e.repo.GetUsage(ctx, userID, feature)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.metrics.RecordStoreError("relational", "allowance.read")
		e.metrics.RecordDecision(metrics.GateAllowance, feature.String(), tier.String(), metrics.OutcomeFailOpen)
		e.logger.Warnw("allowance read failed, failing open",
			"store", "relational",
			"operation", "allowance.read",
			"feature", feature,
			"tier", tier,
			"error", err,
		)
		fa := allowance.NewFeatureAllowance(feature, 0, grant)
		fa.CanUse = true
		return &fa, nil
	}

	fa := allowance.NewFeatureAllowance(feature, used, grant)
	outcome := metrics.OutcomeAllowed
	if !fa.CanUse {
		outcome = metrics.OutcomeDenied
	}
	e.metrics.RecordDecision(metrics.GateAllowance, feature.String(), tier.String(), outcome)
	return &fa, nil
}

// ConsumeAllowance applies actionID at most once. A replay is a no-op; an
// exhausted grant returns an AllowanceExhausted error.
func (e *AllowanceEngine) ConsumeAllowance(ctx context.Context, userID string, tier quota.Tier, feature quota.Feature, actionID string) error {
	_, err := e.ReserveAllowance(ctx, userID, tier, feature, actionID)
	return err
}

// ReserveAllowance takes one unit for actionID before the gated work runs.
// applied is false when actionID already holds a unit, so callers can tell a
// replayed action from a new one. Pair a successful reservation with
// ReleaseAllowance if the work then fails.
func (e *AllowanceEngine) ReserveAllowance(ctx context.Context, userID string, tier quota.Tier, feature quota.Feature, actionID string) (bool, error) {
	if actionID == "" {
		return false, apperrors.NewValidationError("action id is required")
	}
	grant, err := e.grantFor(userID, tier, feature)
	if err != nil {
		return false, err
	}

	applied, err := e.repo.Consume(ctx, userID, feature, actionID, grant)
	switch {
	case errors.Is(err, allowance.ErrAllowanceExhausted):
		e.metrics.RecordAllowanceConsume(feature.String(), "exhausted")
		return false, apperrors.NewAllowanceExhaustedError(
			"allowance exhausted",
			fmt.Sprintf("%s allows %s uses on the %s plan", feature, grant, tier),
		)
	case err != nil:
		e.metrics.RecordAllowanceConsume(feature.String(), "error")
		return false, fmt.Errorf("failed to consume allowance: %w", err)
	}

	if !applied {
		e.metrics.RecordAllowanceConsume(feature.String(), "duplicate")
		e.logger.Debugw("allowance action already applied",
			"feature", feature,
			"action_id", actionID,
		)
		return false, nil
	}

	e.metrics.RecordAllowanceConsume(feature.String(), "applied")
	e.invalidate(ctx, userID)
	e.logger.Infow("allowance consumed",
		"user_id", userID,
		"feature", feature,
		"tier", tier,
		"action_id", actionID,
	)
	return true, nil
}

// ReleaseAllowance returns the unit reserved for actionID. Releasing an
// action that holds nothing is a no-op.
func (e *AllowanceEngine) ReleaseAllowance(ctx context.Context, userID string, feature quota.Feature, actionID string) error {
	if userID == "" || actionID == "" {
		return apperrors.NewValidationError("user id and action id are required")
	}

	released, err := e.repo.Release(ctx, userID, feature, actionID)
	if err != nil {
		e.metrics.RecordAllowanceConsume(feature.String(), "error")
		return fmt.Errorf("failed to release allowance: %w", err)
	}
	if !released {
		return nil
	}

	e.metrics.RecordAllowanceConsume(feature.String(), "released")
	e.invalidate(ctx, userID)
	e.logger.Infow("allowance released",
		"user_id", userID,
		"feature", feature,
		"action_id", actionID,
	)
	return nil
}

// GetAllAllowances returns every one-shot feature's state for display. It
// may read an advisory snapshot and is never used to gate a consume.
func (e *AllowanceEngine) GetAllAllowances(ctx context.Context, userID string, tier quota.Tier) (map[quota.Feature]allowance.FeatureAllowance, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	load := func(ctx context.Context) (map[quota.Feature]int, error) {
		return e.repo.GetAllUsage(ctx, userID)
	}

	var (
		usage map[quota.Feature]int
		err   error
	)
	if e.cache != nil {
		usage, err = e.cache.GetOrLoad(ctx, userID, load)
	} else {
		usage, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load allowance usage: %w", err)
	}

	out := make(map[quota.Feature]allowance.FeatureAllowance)
	for _, f := range e.grants.Features() {
		g, err := e.grants.GrantFor(f, tier)
		if err != nil {
			continue
		}
		out[f] = allowance.NewFeatureAllowance(f, usage[f], g)
	}
	return out, nil
}

func (e *AllowanceEngine) invalidate(ctx context.Context, userID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, userID); err != nil {
		e.logger.Warnw("failed to invalidate allowance snapshot",
			"user_id", userID,
			"error", err,
		)
	}
}
