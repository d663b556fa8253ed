package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

type PreviewHandler struct {
	convertUC convertPreviewSessionUseCase
	getUC     getPreviewSessionUseCase
	markdown  markdown.Service
	logger    logger.Interface
}

func NewPreviewHandler(
	convertUC convertPreviewSessionUseCase,
	getUC getPreviewSessionUseCase,
	md markdown.Service,
	logger logger.Interface,
) *PreviewHandler {
	return &PreviewHandler{
		convertUC: convertUC,
		getUC:     getUC,
		markdown:  md,
		logger:    logger,
	}
}

// Convert handles POST /preview-sessions/convert
// @Summary Unlock a preview session
// @Description Reveal the full analysis of an anonymous preview to the signed-in user. Each session converts once.
// @Tags Preview Sessions
// @Accept json
// @Produce json
// @Param request body ConvertPreviewRequest true "Session to convert"
// @Success 200 {object} utils.APIResponse{data=ConvertPreviewResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Security Bearer
// @Router /api/v1/preview-sessions/convert [post]
func (h *PreviewHandler) Convert(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req ConvertPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for convert preview", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.convertUC.Execute(c.Request.Context(), previewuc.ConvertPreviewSessionCommand{
		SessionID: req.SessionID,
		UserID:    p.Identity.UserID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := ConvertPreviewResponse{
		Analysis:    result.Analysis,
		FeatureType: result.FeatureType.String(),
		InputData:   result.InputData,
	}
	if html, err := h.markdown.ToHTMLSanitized(result.Analysis); err == nil {
		resp.AnalysisHTML = html
	}

	utils.SuccessResponse(c, http.StatusOK, "preview unlocked", resp)
}

// Get handles GET /preview-sessions/:id
// @Summary Get a preview session
// @Description Get the teaser and lock state of a preview session. The full analysis is never returned here.
// @Tags Preview Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse{data=PreviewSessionDTO}
// @Failure 404 {object} utils.APIResponse
// @Router /api/v1/preview-sessions/{id} [get]
func (h *PreviewHandler) Get(c *gin.Context) {
	view, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toPreviewSessionDTO(view))
}
