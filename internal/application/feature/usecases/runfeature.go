package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

// DenialReason tells the client which gate refused the request.
type DenialReason string

const (
	DenialRateLimited        DenialReason = "rate_limited"
	DenialAllowanceExhausted DenialReason = "allowance_exhausted"
	DenialAnonymousLimit     DenialReason = "anonymous_limit"
)

// Denial is the structured refusal of a gate. It is a result, not an error.
type Denial struct {
	Reason    DenialReason
	Remaining int
	Limit     int
	UsedCount int64
	ResetAt   *time.Time
}

type PreviewResult struct {
	SessionID string
	Teaser    string
	Locked    bool
}

type RunFeatureCommand struct {
	Feature quota.Feature
	Input   feature.Input

	// User is nil for anonymous requests; Tier is then ignored.
	User *quota.AuthenticatedIdentity
	Tier quota.Tier

	Fingerprint string
	IPAddress   string

	// ActionID identifies one logical action. A one-shot unit is reserved
	// under it before generation, so a replayed ActionID is refused rather
	// than generated again. A fresh one is minted when empty.
	ActionID string
}

// RunFeatureResult carries exactly one of Denied, Preview or Content.
type RunFeatureResult struct {
	Denied *Denial

	Content   string
	Usage     *quota.Decision
	Allowance *allowance.FeatureAllowance

	Preview *PreviewResult
}

type previewCreator interface {
	Execute(ctx context.Context, cmd previewuc.CreatePreviewSessionCommand) (*previewuc.CreatePreviewSessionResult, error)
}

// RunFeatureUseCase is the gated feature flow. Authenticated users pass the
// rate limit and, for one-shot features, the allowance. Anonymous visitors
// pass the ledger and the per-IP guard and receive a locked preview.
type RunFeatureUseCase struct {
	rateLimits *usage.RateLimitEngine
	allowances *usage.AllowanceEngine
	ledger     *usage.AnonymousLedger
	generator  feature.Generator
	previews   previewCreator
	metrics    *metrics.UsageMetrics
	logger     logger.Interface
}

func NewRunFeatureUseCase(
	rateLimits *usage.RateLimitEngine,
	allowances *usage.AllowanceEngine,
	ledger *usage.AnonymousLedger,
	generator feature.Generator,
	previews previewCreator,
	m *metrics.UsageMetrics,
	logger logger.Interface,
) *RunFeatureUseCase {
	return &RunFeatureUseCase{
		rateLimits: rateLimits,
		allowances: allowances,
		ledger:     ledger,
		generator:  generator,
		previews:   previews,
		metrics:    m,
		logger:     logger,
	}
}

func (uc *RunFeatureUseCase) Execute(ctx context.Context, cmd RunFeatureCommand) (*RunFeatureResult, error) {
	if !cmd.Feature.IsValid() {
		return nil, apperrors.NewValidationError("unknown feature", string(cmd.Feature))
	}
	input := cmd.Input.Normalize()
	if err := input.Validate(cmd.Feature); err != nil {
		return nil, apperrors.NewValidationError("invalid feature input", err.Error())
	}

	if cmd.User != nil {
		return uc.runAuthenticated(ctx, cmd, input)
	}
	return uc.runAnonymous(ctx, cmd, input)
}

func (uc *RunFeatureUseCase) runAuthenticated(ctx context.Context, cmd RunFeatureCommand, input feature.Input) (*RunFeatureResult, error) {
	user := *cmd.User
	tier := cmd.Tier
	if !tier.IsValid() || tier == quota.TierAnonymous {
		tier = quota.TierFree
	}

	decision, err := uc.rateLimits.CheckAndConsume(ctx, user.Subject(), cmd.Feature, tier)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		resetAt := decision.ResetAt
		return &RunFeatureResult{Denied: &Denial{
			Reason:    DenialRateLimited,
			Remaining: decision.Remaining,
			Limit:     decision.Limit,
			ResetAt:   &resetAt,
		}}, nil
	}

	oneShot := uc.allowances.IsOneShot(cmd.Feature)
	var (
		fa       *allowance.FeatureAllowance
		actionID string
		reserved bool
	)
	if oneShot {
		fa, err = uc.allowances.CheckAllowance(ctx, user.UserID, tier, cmd.Feature)
		if err != nil {
			return nil, err
		}
		if !fa.CanUse {
			return exhaustedResult(fa), nil
		}

		actionID = cmd.ActionID
		if actionID == "" {
			actionID = uuid.NewString()
		}
		reserved, err = uc.allowances.ReserveAllowance(ctx, user.UserID, tier, cmd.Feature, actionID)
		switch {
		case apperrors.IsType(err, apperrors.ErrorTypeAllowanceExhausted):
			// lost a race for the last unit after the check
			fa.UsedCount = fa.Granted.Count()
			fa.CanUse = false
			return exhaustedResult(fa), nil
		case apperrors.IsValidationError(err):
			return nil, err
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			uc.logger.Warnw("allowance reservation failed, failing open",
				"store", "relational",
				"operation", "allowance.reserve",
				"user_id", user.UserID,
				"feature", cmd.Feature,
				"error", err,
			)
		case !reserved:
			return nil, apperrors.NewConflictError(
				"this action was already processed",
				fmt.Sprintf("action id %q already used for %s", actionID, cmd.Feature),
			)
		}
	}

	content, err := uc.generate(ctx, cmd.Feature, input)
	if err != nil {
		if reserved {
			// release even when the caller has gone away
			if relErr := uc.allowances.ReleaseAllowance(context.WithoutCancel(ctx), user.UserID, cmd.Feature, actionID); relErr != nil {
				uc.logger.Errorw("allowance not released after failed generation",
					"user_id", user.UserID,
					"feature", cmd.Feature,
					"action_id", actionID,
					"error", relErr,
				)
			}
		}
		return nil, err
	}

	if reserved {
		fa.UsedCount++
		fa.CanUse = fa.Granted.Allows(fa.UsedCount)
	}

	return &RunFeatureResult{Content: content, Usage: decision, Allowance: fa}, nil
}

func exhaustedResult(fa *allowance.FeatureAllowance) *RunFeatureResult {
	return &RunFeatureResult{Denied: &Denial{
		Reason:    DenialAllowanceExhausted,
		UsedCount: int64(fa.UsedCount),
		Limit:     fa.Granted.Count(),
	}}
}

func (uc *RunFeatureUseCase) runAnonymous(ctx context.Context, cmd RunFeatureCommand, input feature.Input) (*RunFeatureResult, error) {
	identity, err := quota.NewAnonymousIdentity(cmd.Fingerprint, cmd.IPAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("a browser fingerprint is required for anonymous use", err.Error())
	}

	status, err := uc.ledger.CanUse(ctx, identity, cmd.Feature)
	if err != nil {
		return nil, err
	}
	if !status.CanUse {
		return &RunFeatureResult{Denied: &Denial{
			Reason:    DenialAnonymousLimit,
			Remaining: 0,
			Limit:     1,
			UsedCount: status.UsedCount,
			ResetAt:   status.ResetAt,
		}}, nil
	}

	if identity.HasKnownIP() {
		decision, err := uc.rateLimits.CheckAndConsume(ctx, identity.IPSubject(), cmd.Feature, quota.TierAnonymous)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			resetAt := decision.ResetAt
			return &RunFeatureResult{Denied: &Denial{
				Reason:    DenialRateLimited,
				Remaining: decision.Remaining,
				Limit:     decision.Limit,
				ResetAt:   &resetAt,
			}}, nil
		}
	}

	content, err := uc.generate(ctx, cmd.Feature, input)
	if err != nil {
		return nil, err
	}

	created, err := uc.previews.Execute(ctx, previewuc.CreatePreviewSessionCommand{
		Feature: cmd.Feature,
		Input:   input,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	uc.ledger.RecordUse(ctx, identity, cmd.Feature)

	return &RunFeatureResult{Preview: &PreviewResult{
		SessionID: created.SessionID,
		Teaser:    created.Teaser,
		Locked:    true,
	}}, nil
}

func (uc *RunFeatureUseCase) generate(ctx context.Context, f quota.Feature, input feature.Input) (string, error) {
	start := time.Now()
	content, err := uc.generator.Generate(ctx, f, input)
	uc.metrics.ObserveGeneration(f.String(), err, time.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		uc.logger.Errorw("feature generation failed", "feature", f, "error", err)
		return "", apperrors.NewServiceUnavailableError("generation failed, please retry", fmt.Sprintf("%s generation failed", f))
	}
	return content, nil
}
