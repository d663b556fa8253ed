package models

import "github.com/applytrack/applytrack/internal/shared/constants"

// FeatureAllowanceModel holds the lifetime one-shot counter for a user and
// feature.
type FeatureAllowanceModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"size:64;not null;uniqueIndex:uk_feature_allowance_user_feature,priority:1"`
	FeatureType string `gorm:"size:32;not null;uniqueIndex:uk_feature_allowance_user_feature,priority:2"`
	UsedCount   int    `gorm:"not null;default:0"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (FeatureAllowanceModel) TableName() string {
	return constants.TableFeatureAllowances
}

// AllowanceConsumptionModel records which action ids already consumed an
// allowance. The unique key makes consumption idempotent.
type AllowanceConsumptionModel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"size:64;not null;uniqueIndex:uk_allowance_consumption_action,priority:1"`
	FeatureType string `gorm:"size:32;not null;uniqueIndex:uk_allowance_consumption_action,priority:2"`
	ActionID    string `gorm:"size:128;not null;uniqueIndex:uk_allowance_consumption_action,priority:3"`
	ConsumedAt  int64  `gorm:"autoCreateTime:milli;not null"`
}

func (AllowanceConsumptionModel) TableName() string {
	return constants.TableAllowanceConsumptions
}
