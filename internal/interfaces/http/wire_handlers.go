package http

import (
	"github.com/applytrack/applytrack/internal/infrastructure/docparse"
	"github.com/applytrack/applytrack/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	featureHandler *handlers.FeatureHandler
	previewHandler *handlers.PreviewHandler
	usageHandler   *handlers.UsageHandler
	healthHandler  *handlers.HealthHandler
}

// ============================================================
// Section 4: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	h := &allHandlers{
		featureHandler: handlers.NewFeatureHandler(
			ucs.runFeatureUC,
			docparse.NewExtractor(),
			ucs.markdown,
			c.cfg.Upload.MaxBytes,
			log.Named("http.feature"),
		),
		previewHandler: handlers.NewPreviewHandler(ucs.convertPreviewUC, ucs.getPreviewUC, ucs.markdown, log.Named("http.preview")),
		usageHandler:   handlers.NewUsageHandler(ucs.getUsageSummaryUC, ucs.getAnonymousUsageUC, log.Named("http.usage")),
	}

	if sqlDB, err := c.db.DB(); err == nil {
		h.healthHandler = handlers.NewHealthHandler(sqlDB, c.counterStore, c.version, log.Named("http.health"))
	} else {
		log.Errorw("failed to get sql.DB for health checks", "error", err)
	}

	c.hdlrs = h
}
