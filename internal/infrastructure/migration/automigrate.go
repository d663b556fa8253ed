package migration

import (
	"github.com/applytrack/applytrack/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return models.All()
}
