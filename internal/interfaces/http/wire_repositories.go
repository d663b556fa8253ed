package http

import (
	"gorm.io/gorm"

	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/anonusage"
	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	anonUsageRepo      anonusage.Repository
	allowanceRepo      allowance.Repository
	previewSessionRepo preview.Repository
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		anonUsageRepo:      repository.NewAnonymousUsageRepository(db),
		allowanceRepo:      repository.NewAllowanceRepository(db),
		previewSessionRepo: repository.NewPreviewSessionRepository(db),
	}
}
