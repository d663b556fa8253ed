package usecases

import (
	"context"
	"fmt"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	"github.com/applytrack/applytrack/internal/shared/id"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
)

const defaultTeaserChars = 400

type CreatePreviewSessionCommand struct {
	Feature quota.Feature
	Input   feature.Input
	Content string
}

type CreatePreviewSessionResult struct {
	SessionID string
	Teaser    string
}

type CreatePreviewSessionUseCase struct {
	repo        preview.Repository
	cipher      ContentCipher
	markdown    markdown.Service
	teaserChars int
	logger      logger.Interface
	clock       biztime.Clock
	newID       func() (string, error)
}

func NewCreatePreviewSessionUseCase(
	repo preview.Repository,
	cipher ContentCipher,
	md markdown.Service,
	teaserChars int,
	logger logger.Interface,
) *CreatePreviewSessionUseCase {
	if teaserChars <= 0 {
		teaserChars = defaultTeaserChars
	}
	return &CreatePreviewSessionUseCase{
		repo:        repo,
		cipher:      cipher,
		markdown:    md,
		teaserChars: teaserChars,
		logger:      logger,
		clock:       biztime.NowUTC,
		newID:       id.NewPreviewSessionID,
	}
}

func (uc *CreatePreviewSessionUseCase) Execute(ctx context.Context, cmd CreatePreviewSessionCommand) (*CreatePreviewSessionResult, error) {
	sessionID, err := uc.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview session id: %w", err)
	}

	sealed, err := uc.cipher.Encrypt(sessionID, []byte(cmd.Content))
	if err != nil {
		uc.logger.Errorw("failed to encrypt preview content", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to encrypt preview content: %w", err)
	}

	teaser := uc.markdown.Teaser(cmd.Content, uc.teaserChars)
	session, err := preview.NewSession(sessionID, cmd.Feature, cmd.Input, sealed, teaser, uc.clock())
	if err != nil {
		return nil, fmt.Errorf("failed to build preview session: %w", err)
	}

	if err := uc.repo.Create(ctx, session); err != nil {
		uc.logger.Errorw("failed to save preview session", "session_id", sessionID, "error", err)
		return nil, err
	}

	uc.logger.Infow("preview session created",
		"session_id", sessionID,
		"feature", cmd.Feature,
	)

	return &CreatePreviewSessionResult{SessionID: sessionID, Teaser: teaser}, nil
}
