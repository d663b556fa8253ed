package models

import (
	"gorm.io/datatypes"

	"github.com/applytrack/applytrack/internal/shared/constants"
)

type PreviewSessionModel struct {
	ID               string         `gorm:"primaryKey;size:64"`
	FeatureType      string         `gorm:"size:32;not null;index"`
	InputData        datatypes.JSON `gorm:"type:json;not null"`
	ContentEncrypted []byte         `gorm:"not null"`
	Teaser           string         `gorm:"type:text;not null"`
	UserID           *string        `gorm:"size:64;index"`
	ConvertedAt      *int64
	CreatedAt        int64 `gorm:"autoCreateTime:milli;not null;index"`
}

func (PreviewSessionModel) TableName() string {
	return constants.TablePreviewSessions
}
