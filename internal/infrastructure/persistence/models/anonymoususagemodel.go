package models

import "github.com/applytrack/applytrack/internal/shared/constants"

// AnonymousUsageRecordModel is one append-only row of the anonymous ledger.
// UsedAt is unix milliseconds so range predicates compare the same way on
// every driver.
type AnonymousUsageRecordModel struct {
	ID          uint   `gorm:"primaryKey"`
	Fingerprint string `gorm:"size:256;not null;index:idx_anon_usage_window,priority:1"`
	FeatureType string `gorm:"size:32;not null;index:idx_anon_usage_window,priority:2"`
	UsedAt      int64  `gorm:"not null;index:idx_anon_usage_window,priority:3"`
	IPAddress   string `gorm:"size:64;not null;index"`
}

func (AnonymousUsageRecordModel) TableName() string {
	return constants.TableAnonymousUsage
}
