// Package usage holds the three gates every feature request passes: the
// rate limit engine, the anonymous ledger and the one-shot allowance engine.
package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	"github.com/applytrack/applytrack/internal/infrastructure/ratelimit"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// RateLimitEngine enforces the windowed policies. The decision always comes
// from the counter store's atomic increment; when the store cannot answer
// the engine fails open.
type RateLimitEngine struct {
	policies *quota.PolicyTable
	store    ratelimit.CounterStore
	keys     ratelimit.KeyBuilder
	enabled  bool
	metrics  *metrics.UsageMetrics
	logger   logger.Interface
	clock    biztime.Clock
}

func NewRateLimitEngine(
	policies *quota.PolicyTable,
	store ratelimit.CounterStore,
	keys ratelimit.KeyBuilder,
	enabled bool,
	m *metrics.UsageMetrics,
	log logger.Interface,
) *RateLimitEngine {
	return &RateLimitEngine{
		policies: policies,
		store:    store,
		keys:     keys,
		enabled:  enabled,
		metrics:  m,
		logger:   log.With("component", "usage.ratelimit"),
		clock:    biztime.NowUTC,
	}
}

// WithClock replaces the time source.
func (e *RateLimitEngine) WithClock(c biztime.Clock) *RateLimitEngine {
	e.clock = c
	return e
}

func (e *RateLimitEngine) resolve(subject quota.Subject, feature quota.Feature, tier quota.Tier) (quota.Policy, error) {
	if err := subject.Validate(); err != nil {
		return quota.Policy{}, apperrors.NewValidationError("invalid rate limit subject", err.Error())
	}
	if !feature.IsValid() {
		return quota.Policy{}, apperrors.NewValidationError("unknown feature", string(feature))
	}
	if !tier.IsValid() {
		return quota.Policy{}, apperrors.NewValidationError("unknown tier", string(tier))
	}

	policy, err := e.policies.Lookup(feature, tier)
	if err != nil {
		return quota.Policy{}, apperrors.NewConfigurationError("no quota policy for feature and tier", err.Error())
	}
	return policy, nil
}

// CheckAndConsume consumes one unit for subject if the policy allows it.
// A denial is a normal result, not an error. Consumed units are not refunded
// when the caller later fails.
func (e *RateLimitEngine) CheckAndConsume(ctx context.Context, subject quota.Subject, feature quota.Feature, tier quota.Tier) (*quota.Decision, error) {
	policy, err := e.resolve(subject, feature, tier)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	if !e.enabled {
		return &quota.Decision{Allowed: true, Remaining: policy.Limit, Limit: policy.Limit, ResetAt: now.Add(policy.Window)}, nil
	}

	if !e.store.IsAvailable(ctx) {
		return e.failOpen(policy, "increment", ratelimit.ErrStoreUnavailable), nil
	}

	key := e.keys.Build(subject, policy, now)
	res, err := e.store.Increment(ctx, key, policy, now)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("rate limit check cancelled: %w", err)
		}
		return e.failOpen(policy, "increment", err), nil
	}

	decision := &quota.Decision{
		Allowed:   res.Allowed,
		Remaining: res.Remaining,
		Limit:     policy.Limit,
		ResetAt:   res.ResetAt,
	}

	if decision.Allowed {
		e.metrics.RecordDecision(metrics.GateRateLimit, feature.String(), tier.String(), metrics.OutcomeAllowed)
		e.logger.Debugw("rate limit allowed",
			"subject_kind", subject.Kind,
			"feature", feature,
			"tier", tier,
			"remaining", decision.Remaining,
		)
	} else {
		e.metrics.RecordDecision(metrics.GateRateLimit, feature.String(), tier.String(), metrics.OutcomeDenied)
		e.logger.Infow("rate limit denied",
			"subject_kind", subject.Kind,
			"feature", feature,
			"tier", tier,
			"limit", decision.Limit,
			"reset_at", decision.ResetAt,
		)
	}
	return decision, nil
}

// GetUsageStats reads the counter without consuming. When the store cannot
// be read the stats are placeholders flagged Degraded.
func (e *RateLimitEngine) GetUsageStats(ctx context.Context, subject quota.Subject, feature quota.Feature, tier quota.Tier) (*quota.UsageStats, error) {
	policy, err := e.resolve(subject, feature, tier)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	stats := &quota.UsageStats{
		Feature:    feature,
		Tier:       tier,
		Limit:      policy.Limit,
		Remaining:  policy.Limit,
		Window:     policy.Window,
		WindowType: policy.WindowType,
		ResetAt:    now.Add(policy.Window),
	}
	if !e.enabled {
		return stats, nil
	}

	var res *ratelimit.CounterResult
	if e.store.IsAvailable(ctx) {
		res, err = e.store.Peek(ctx, e.keys.Build(subject, policy, now), policy, now)
	} else {
		err = ratelimit.ErrStoreUnavailable
	}
	if err != nil {
		e.metrics.RecordStoreError(e.store.Name(), "peek")
		e.logger.Warnw("counter store unavailable, returning degraded usage stats",
			"store", e.store.Name(),
			"operation", "peek",
			"feature", feature,
			"tier", tier,
			"error", err,
		)
		stats.Degraded = true
		return stats, nil
	}

	stats.Used = res.Count
	stats.Remaining = res.Remaining
	stats.ResetAt = res.ResetAt
	return stats, nil
}

func (e *RateLimitEngine) failOpen(policy quota.Policy, operation string, cause error) *quota.Decision {
	e.metrics.RecordStoreError(e.store.Name(), operation)
	e.metrics.RecordDecision(metrics.GateRateLimit, policy.Feature.String(), policy.Tier.String(), metrics.OutcomeFailOpen)
	e.logger.Warnw("counter store unavailable, failing open",
		"store", e.store.Name(),
		"operation", operation,
		"feature", policy.Feature,
		"tier", policy.Tier,
		"error", cause,
	)

	return &quota.Decision{
		Allowed:   true,
		Remaining: policy.Limit,
		Limit:     policy.Limit,
		ResetAt:   e.clock().Add(policy.Window),
	}
}
