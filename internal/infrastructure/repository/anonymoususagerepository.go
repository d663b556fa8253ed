package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/applytrack/applytrack/internal/domain/anonusage"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/mappers"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

type AnonymousUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.AnonymousUsageMapper
}

func NewAnonymousUsageRepository(db *gorm.DB) anonusage.Repository {
	return &AnonymousUsageRepositoryImpl{
		db:     db,
		mapper: mappers.NewAnonymousUsageMapper(),
	}
}

func (r *AnonymousUsageRepositoryImpl) Create(ctx context.Context, record *anonusage.Record) error {
	model := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create anonymous usage record: %w", err)
	}
	record.SetID(model.ID)
	return nil
}

func (r *AnonymousUsageRepositoryImpl) UsageSince(ctx context.Context, fingerprint string, feature quota.Feature, since time.Time) (anonusage.WindowUsage, error) {
	var row struct {
		Total  int64
		Oldest sql.NullInt64
	}

	err := r.db.WithContext(ctx).
		Model(&models.AnonymousUsageRecordModel{}).
		Select("COUNT(*) AS total, MIN(used_at) AS oldest").
		Where("fingerprint = ? AND feature_type = ? AND used_at >= ?", fingerprint, feature.String(), since.UnixMilli()).
		Scan(&row).Error
	if err != nil {
		return anonusage.WindowUsage{}, fmt.Errorf("failed to aggregate anonymous usage: %w", err)
	}

	usage := anonusage.WindowUsage{Count: row.Total}
	if row.Oldest.Valid && row.Total > 0 {
		t := time.UnixMilli(row.Oldest.Int64).UTC()
		usage.Oldest = &t
	}
	return usage, nil
}
