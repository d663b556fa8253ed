package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

type PreviewSessionMapper interface {
	ToEntity(model *models.PreviewSessionModel) (*preview.Session, error)
	ToModel(entity *preview.Session) (*models.PreviewSessionModel, error)
}

type PreviewSessionMapperImpl struct{}

func NewPreviewSessionMapper() PreviewSessionMapper {
	return &PreviewSessionMapperImpl{}
}

func (m *PreviewSessionMapperImpl) ToEntity(model *models.PreviewSessionModel) (*preview.Session, error) {
	if model == nil {
		return nil, nil
	}

	var input feature.Input
	if len(model.InputData) > 0 {
		if err := json.Unmarshal(model.InputData, &input); err != nil {
			return nil, fmt.Errorf("failed to decode preview input: %w", err)
		}
	}

	var convertedAt *time.Time
	if model.ConvertedAt != nil {
		t := time.UnixMilli(*model.ConvertedAt).UTC()
		convertedAt = &t
	}

	entity, err := preview.ReconstructSession(
		model.ID,
		quota.Feature(model.FeatureType),
		input,
		model.ContentEncrypted,
		model.Teaser,
		model.UserID,
		convertedAt,
		time.UnixMilli(model.CreatedAt).UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct preview session: %w", err)
	}
	return entity, nil
}

func (m *PreviewSessionMapperImpl) ToModel(entity *preview.Session) (*models.PreviewSessionModel, error) {
	if entity == nil {
		return nil, nil
	}

	input, err := json.Marshal(entity.Input())
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview input: %w", err)
	}

	model := &models.PreviewSessionModel{
		ID:               entity.ID(),
		FeatureType:      entity.Feature().String(),
		InputData:        datatypes.JSON(input),
		ContentEncrypted: entity.ContentEncrypted(),
		Teaser:           entity.Teaser(),
		UserID:           entity.UserID(),
		CreatedAt:        entity.CreatedAt().UnixMilli(),
	}
	if at := entity.ConvertedAt(); at != nil {
		ms := at.UnixMilli()
		model.ConvertedAt = &ms
	}
	return model, nil
}
