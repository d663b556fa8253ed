package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/domain/quota"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
)

// PreviewSessionView is the public face of a session. It never carries the
// full content.
type PreviewSessionView struct {
	SessionID   string
	FeatureType quota.Feature
	Teaser      string
	TeaserHTML  string
	Locked      bool
	CreatedAt   time.Time
}

type GetPreviewSessionUseCase struct {
	repo     preview.Repository
	markdown markdown.Service
	logger   logger.Interface
}

func NewGetPreviewSessionUseCase(repo preview.Repository, md markdown.Service, logger logger.Interface) *GetPreviewSessionUseCase {
	return &GetPreviewSessionUseCase{repo: repo, markdown: md, logger: logger}
}

func (uc *GetPreviewSessionUseCase) Execute(ctx context.Context, sessionID string) (*PreviewSessionView, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}

	session, err := uc.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, preview.ErrSessionNotFound) {
			return nil, apperrors.NewSessionNotFoundError("preview session not found")
		}
		uc.logger.Errorw("failed to load preview session", "session_id", sessionID, "error", err)
		return nil, err
	}

	html, err := uc.markdown.ToHTMLSanitized(session.Teaser())
	if err != nil {
		uc.logger.Warnw("failed to render teaser", "session_id", sessionID, "error", err)
		html = ""
	}

	return &PreviewSessionView{
		SessionID:   session.ID(),
		FeatureType: session.Feature(),
		Teaser:      session.Teaser(),
		TeaserHTML:  html,
		Locked:      !session.IsConverted(),
		CreatedAt:   session.CreatedAt(),
	}, nil
}
