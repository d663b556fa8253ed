package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

type AllowanceRepositoryImpl struct {
	db *gorm.DB
}

func NewAllowanceRepository(db *gorm.DB) allowance.Repository {
	return &AllowanceRepositoryImpl{db: db}
}

func (r *AllowanceRepositoryImpl) GetUsage(ctx context.Context, userID string, feature quota.Feature) (int, error) {
	var model models.FeatureAllowanceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND feature_type = ?", userID, feature.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get allowance usage: %w", err)
	}
	return model.UsedCount, nil
}

func (r *AllowanceRepositoryImpl) GetAllUsage(ctx context.Context, userID string) (map[quota.Feature]int, error) {
	var rows []models.FeatureAllowanceModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list allowance usage: %w", err)
	}

	usage := make(map[quota.Feature]int, len(rows))
	for _, row := range rows {
		usage[quota.Feature(row.FeatureType)] = row.UsedCount
	}
	return usage, nil
}

// Consume records actionID and bumps used_count in one transaction. The
// consumption row goes first so a replayed action stops before touching the
// counter, and the guarded increment rolls the whole thing back when the
// grant is already used up.
func (r *AllowanceRepositoryImpl) Consume(ctx context.Context, userID string, feature quota.Feature, actionID string, grant allowance.Grant) (bool, error) {
	if actionID == "" {
		return false, allowance.ErrMissingActionID
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumption := models.AllowanceConsumptionModel{
			UserID:      userID,
			FeatureType: feature.String(),
			ActionID:    actionID,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&consumption)
		if res.Error != nil {
			return fmt.Errorf("failed to record allowance consumption: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		counter := models.FeatureAllowanceModel{UserID: userID, FeatureType: feature.String()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
			return fmt.Errorf("failed to create allowance counter: %w", err)
		}

		q := tx.Model(&models.FeatureAllowanceModel{}).
			Where("user_id = ? AND feature_type = ?", userID, feature.String())
		if !grant.IsUnlimited() {
			q = q.Where("used_count < ?", grant.Count())
		}
		upd := q.UpdateColumns(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": time.Now().UnixMilli(),
		})
		if upd.Error != nil {
			return fmt.Errorf("failed to increment allowance counter: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return allowance.ErrAllowanceExhausted
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// Release deletes the consumption row for actionID and gives its unit back
// in the same transaction. The action id becomes usable again.
func (r *AllowanceRepositoryImpl) Release(ctx context.Context, userID string, feature quota.Feature, actionID string) (bool, error) {
	if actionID == "" {
		return false, allowance.ErrMissingActionID
	}

	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND feature_type = ? AND action_id = ?", userID, feature.String(), actionID).
			Delete(&models.AllowanceConsumptionModel{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete allowance consumption: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		upd := tx.Model(&models.FeatureAllowanceModel{}).
			Where("user_id = ? AND feature_type = ? AND used_count > 0", userID, feature.String()).
			UpdateColumns(map[string]any{
				"used_count": gorm.Expr("used_count - 1"),
				"updated_at": time.Now().UnixMilli(),
			})
		if upd.Error != nil {
			return fmt.Errorf("failed to decrement allowance counter: %w", upd.Error)
		}

		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
