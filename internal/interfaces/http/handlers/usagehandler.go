package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

type UsageHandler struct {
	summaryUC   getUsageSummaryUseCase
	anonymousUC getAnonymousUsageUseCase
	logger      logger.Interface
}

func NewUsageHandler(summaryUC getUsageSummaryUseCase, anonymousUC getAnonymousUsageUseCase, logger logger.Interface) *UsageHandler {
	return &UsageHandler{
		summaryUC:   summaryUC,
		anonymousUC: anonymousUC,
		logger:      logger,
	}
}

// GetUsage handles GET /usage
// @Summary Get usage summary
// @Description Get rate limit windows and lifetime allowances for the signed-in user
// @Tags Usage
// @Produce json
// @Success 200 {object} utils.APIResponse{data=UsageSummaryDTO}
// @Failure 401 {object} utils.APIResponse
// @Security Bearer
// @Router /api/v1/usage [get]
func (h *UsageHandler) GetUsage(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	summary, err := h.summaryUC.Execute(c.Request.Context(), p.Identity, p.Tier)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toUsageSummaryDTO(summary))
}

// GetAnonymousUsage handles GET /usage/anonymous?fingerprint=&feature=
// @Summary Get anonymous usage
// @Description Report whether a browser fingerprint may still run each feature anonymously
// @Tags Usage
// @Produce json
// @Param fingerprint query string true "Browser fingerprint"
// @Param feature query string false "Feature" Enums(job-fit, resume-review, cover-letter, interview-prep)
// @Success 200 {object} utils.APIResponse{data=[]AnonymousUsageDTO}
// @Failure 400 {object} utils.APIResponse
// @Router /api/v1/usage/anonymous [get]
func (h *UsageHandler) GetAnonymousUsage(c *gin.Context) {
	var f quota.Feature
	if raw := c.Query("feature"); raw != "" {
		parsed, err := quota.ParseFeature(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("unknown feature", raw))
			return
		}
		f = parsed
	}

	usages, err := h.anonymousUC.Execute(c.Request.Context(), c.Query("fingerprint"), f)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]AnonymousUsageDTO, 0, len(usages))
	for _, u := range usages {
		out = append(out, toAnonymousUsageDTO(u.Feature, u.Status))
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}
