package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/shared/logger"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	db       databasePinger
	counters counterStoreChecker
	version  string
	logger   logger.Interface
}

func NewHealthHandler(db databasePinger, counters counterStoreChecker, version string, logger logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, counters: counters, version: version, logger: logger}
}

type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version,omitempty"`
	Database     string `json:"database"`
	CounterStore string `json:"counterStore"`
	StoreBackend string `json:"storeBackend"`
}

// Health reports 503 only when the database is down. A counter store
// outage degrades the service but requests still pass (fail open).
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:       "ok",
		Version:      h.version,
		Database:     "up",
		CounterStore: "up",
		StoreBackend: h.counters.Name(),
	}
	code := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Errorw("health check: database unreachable", "error", err)
		resp.Database = "down"
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if !h.counters.IsAvailable(ctx) {
		resp.CounterStore = "down"
		if code == http.StatusOK {
			resp.Status = "degraded"
		}
	}

	c.JSON(code, resp)
}
