package mappers

import (
	"time"

	"github.com/applytrack/applytrack/internal/domain/anonusage"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

type AnonymousUsageMapper interface {
	ToEntity(model *models.AnonymousUsageRecordModel) *anonusage.Record
	ToModel(entity *anonusage.Record) *models.AnonymousUsageRecordModel
}

type AnonymousUsageMapperImpl struct{}

func NewAnonymousUsageMapper() AnonymousUsageMapper {
	return &AnonymousUsageMapperImpl{}
}

func (m *AnonymousUsageMapperImpl) ToEntity(model *models.AnonymousUsageRecordModel) *anonusage.Record {
	if model == nil {
		return nil
	}
	return anonusage.ReconstructRecord(
		model.ID,
		model.Fingerprint,
		model.IPAddress,
		quota.Feature(model.FeatureType),
		time.UnixMilli(model.UsedAt),
	)
}

func (m *AnonymousUsageMapperImpl) ToModel(entity *anonusage.Record) *models.AnonymousUsageRecordModel {
	if entity == nil {
		return nil
	}
	return &models.AnonymousUsageRecordModel{
		ID:          entity.ID(),
		Fingerprint: entity.Fingerprint(),
		FeatureType: entity.Feature().String(),
		UsedAt:      entity.UsedAt().UnixMilli(),
		IPAddress:   entity.IPAddress(),
	}
}
