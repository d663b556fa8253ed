package usecases

import (
	"context"
	"errors"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/metrics"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
)

type ConvertPreviewSessionCommand struct {
	SessionID string
	UserID    string
}

type ConvertPreviewSessionResult struct {
	Analysis    string
	FeatureType quota.Feature
	InputData   feature.Input
}

// ConvertPreviewSessionUseCase unlocks a preview for the user who signed
// up. A session unlocks exactly once; every later attempt, including the
// loser of a concurrent race, gets AlreadyConverted.
type ConvertPreviewSessionUseCase struct {
	repo    preview.Repository
	cipher  ContentCipher
	metrics *metrics.UsageMetrics
	logger  logger.Interface
	clock   biztime.Clock
}

func NewConvertPreviewSessionUseCase(
	repo preview.Repository,
	cipher ContentCipher,
	m *metrics.UsageMetrics,
	logger logger.Interface,
) *ConvertPreviewSessionUseCase {
	return &ConvertPreviewSessionUseCase{
		repo:    repo,
		cipher:  cipher,
		metrics: m,
		logger:  logger,
		clock:   biztime.NowUTC,
	}
}

// WithClock replaces the time source.
func (uc *ConvertPreviewSessionUseCase) WithClock(c biztime.Clock) *ConvertPreviewSessionUseCase {
	uc.clock = c
	return uc
}

func (uc *ConvertPreviewSessionUseCase) Execute(ctx context.Context, cmd ConvertPreviewSessionCommand) (*ConvertPreviewSessionResult, error) {
	if cmd.SessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}
	if cmd.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required to convert a preview")
	}

	session, err := uc.repo.GetByID(ctx, cmd.SessionID)
	if err != nil {
		if errors.Is(err, preview.ErrSessionNotFound) {
			uc.metrics.RecordConversion(metrics.ConversionNotFound)
			return nil, apperrors.NewSessionNotFoundError("preview session not found")
		}
		uc.metrics.RecordConversion(metrics.ConversionError)
		uc.logger.Errorw("failed to load preview session", "session_id", cmd.SessionID, "error", err)
		return nil, err
	}

	if session.IsConverted() {
		uc.metrics.RecordConversion(metrics.ConversionAlreadyConverted)
		uc.logger.Infow("preview session already converted",
			"session_id", cmd.SessionID,
			"user_id", cmd.UserID,
		)
		return nil, apperrors.NewAlreadyConvertedError("preview session already converted")
	}

	plaintext, err := uc.cipher.Decrypt(session.ID(), session.ContentEncrypted())
	if err != nil {
		uc.metrics.RecordConversion(metrics.ConversionDecryptFailed)
		uc.logger.Errorw("preview content decryption failed",
			"session_id", cmd.SessionID,
			"error", err,
		)
		return nil, apperrors.NewDecryptionFailureError("preview content could not be decrypted")
	}

	converted, err := uc.repo.MarkConverted(ctx, session.ID(), cmd.UserID, uc.clock())
	if err != nil {
		uc.metrics.RecordConversion(metrics.ConversionError)
		uc.logger.Errorw("failed to mark preview session converted", "session_id", cmd.SessionID, "error", err)
		return nil, err
	}
	if !converted {
		uc.metrics.RecordConversion(metrics.ConversionAlreadyConverted)
		uc.logger.Infow("preview session converted concurrently",
			"session_id", cmd.SessionID,
			"user_id", cmd.UserID,
		)
		return nil, apperrors.NewAlreadyConvertedError("preview session already converted")
	}

	uc.metrics.RecordConversion(metrics.ConversionConverted)
	uc.logger.Infow("preview session converted",
		"session_id", cmd.SessionID,
		"user_id", cmd.UserID,
		"feature", session.Feature(),
	)

	return &ConvertPreviewSessionResult{
		Analysis:    string(plaintext),
		FeatureType: session.Feature(),
		InputData:   session.Input(),
	}, nil
}
