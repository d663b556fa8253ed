package usage

import (
	"context"
	"time"

	"github.com/applytrack/applytrack/internal/domain/anonusage"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// LedgerStatus answers whether a fingerprint may run a feature anonymously.
type LedgerStatus struct {
	CanUse    bool
	UsedCount int64
	ResetAt   *time.Time
	Degraded  bool
}

// AnonymousLedger allows one successful anonymous use per fingerprint and
// feature in any trailing 24 hours. Usage is written only after the gated
// action succeeded.
type AnonymousLedger struct {
	repo    anonusage.Repository
	metrics *metrics.UsageMetrics
	logger  logger.Interface
	clock   biztime.Clock
}

func NewAnonymousLedger(repo anonusage.Repository, m *metrics.UsageMetrics, log logger.Interface) *AnonymousLedger {
	return &AnonymousLedger{
		repo:    repo,
		metrics: m,
		logger:  log.With("component", "usage.ledger"),
		clock:   biztime.NowUTC,
	}
}

// WithClock replaces the time source.
func (l *AnonymousLedger) WithClock(c biztime.Clock) *AnonymousLedger {
	l.clock = c
	return l
}

func validateAnonymous(identity quota.AnonymousIdentity, feature quota.Feature) error {
	if identity.Fingerprint() == "" {
		return apperrors.NewValidationError("fingerprint is required")
	}
	if !feature.IsValid() {
		return apperrors.NewValidationError("unknown feature", string(feature))
	}
	return nil
}

func (l *AnonymousLedger) CanUse(ctx context.Context, identity quota.AnonymousIdentity, feature quota.Feature) (*LedgerStatus, error) {
	if err := validateAnonymous(identity, feature); err != nil {
		return nil, err
	}

	since := l.clock().Add(-anonusage.Window)
	usage, err := l.repo.UsageSince(ctx, identity.Fingerprint(), feature, since)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.metrics.RecordStoreError("relational", "anon_usage.count")
		l.metrics.RecordDecision(metrics.GateLedger, feature.String(), quota.TierAnonymous.String(), metrics.OutcomeFailOpen)
		l.logger.Warnw("anonymous ledger read failed, failing open",
			"store", "relational",
			"operation", "anon_usage.count",
			"feature", feature,
			"error", err,
		)
		return &LedgerStatus{CanUse: true, Degraded: true}, nil
	}

	status := &LedgerStatus{
		CanUse:    usage.Count == 0,
		UsedCount: usage.Count,
		ResetAt:   usage.ResetAt(),
	}
	outcome := metrics.OutcomeAllowed
	if !status.CanUse {
		outcome = metrics.OutcomeDenied
	}
	l.metrics.RecordDecision(metrics.GateLedger, feature.String(), quota.TierAnonymous.String(), outcome)
	return status, nil
}

// RecordUse appends a usage record. It never fails the caller: the action it
// records already happened, so a failed write is logged and accepted.
func (l *AnonymousLedger) RecordUse(ctx context.Context, identity quota.AnonymousIdentity, feature quota.Feature) {
	record, err := anonusage.NewRecord(identity, feature, l.clock())
	if err != nil {
		l.logger.Warnw("anonymous usage not recorded",
			"feature", feature,
			"error", err,
		)
		return
	}

	if err := l.repo.Create(ctx, record); err != nil {
		l.metrics.RecordStoreError("relational", "anon_usage.create")
		l.logger.Warnw("anonymous usage write failed, usage not recorded",
			"store", "relational",
			"operation", "anon_usage.create",
			"feature", feature,
			"error", err,
		)
		return
	}

	l.logger.Debugw("anonymous usage recorded",
		"feature", feature,
		"record_id", record.ID(),
	)
}
