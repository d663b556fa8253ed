package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/mappers"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

type PreviewSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PreviewSessionMapper
}

func NewPreviewSessionRepository(db *gorm.DB) preview.Repository {
	return &PreviewSessionRepositoryImpl{
		db:     db,
		mapper: mappers.NewPreviewSessionMapper(),
	}
}

func (r *PreviewSessionRepositoryImpl) Create(ctx context.Context, session *preview.Session) error {
	model, err := r.mapper.ToModel(session)
	if err != nil {
		return fmt.Errorf("failed to map preview session entity to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create preview session: %w", err)
	}
	return nil
}

func (r *PreviewSessionRepositoryImpl) GetByID(ctx context.Context, id string) (*preview.Session, error) {
	var model models.PreviewSessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, preview.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get preview session: %w", err)
	}

	session, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map preview session model to entity: %w", err)
	}
	return session, nil
}

func (r *PreviewSessionRepositoryImpl) MarkConverted(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PreviewSessionModel{}).
		Where("id = ? AND converted_at IS NULL", id).
		Updates(map[string]any{
			"user_id":      userID,
			"converted_at": at.UTC().UnixMilli(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark preview session converted: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
