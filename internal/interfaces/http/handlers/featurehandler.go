package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	featureuc "github.com/applytrack/applytrack/internal/application/feature/usecases"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/docparse"
	"github.com/applytrack/applytrack/internal/interfaces/http/middleware"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	"github.com/applytrack/applytrack/internal/shared/constants"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

const resumeFormField = "resume"

// FeatureHandler runs the gated AI features for both signed-in users and
// anonymous visitors.
type FeatureHandler struct {
	runFeatureUC   runFeatureUseCase
	extractor      textExtractor
	markdown       markdown.Service
	maxUploadBytes int64
	clock          biztime.Clock
	logger         logger.Interface
}

func NewFeatureHandler(
	runFeatureUC runFeatureUseCase,
	extractor textExtractor,
	md markdown.Service,
	maxUploadBytes int64,
	logger logger.Interface,
) *FeatureHandler {
	return &FeatureHandler{
		runFeatureUC:   runFeatureUC,
		extractor:      extractor,
		markdown:       md,
		maxUploadBytes: maxUploadBytes,
		clock:          biztime.NowUTC,
		logger:         logger,
	}
}

// WithClock sets the clock used for Retry-After.
func (h *FeatureHandler) WithClock(c biztime.Clock) *FeatureHandler {
	h.clock = c
	return h
}

// RunFeature handles POST /features/:feature
// @Summary Run an AI feature
// @Description Run a gated feature. Signed-in users get the full result; anonymous visitors get a locked preview once per 24 hours.
// @Tags Features
// @Accept json
// @Produce json
// @Param feature path string true "Feature" Enums(job-fit, resume-review, cover-letter, interview-prep)
// @Param Idempotency-Key header string false "Action id; a replayed key returns 409"
// @Param request body RunFeatureRequest true "Feature input"
// @Success 200 {object} utils.APIResponse{data=FeatureResultDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse{data=utils.UsageDenial}
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse{data=utils.UsageDenial}
// @Security Bearer
// @Router /api/v1/features/{feature} [post]
func (h *FeatureHandler) RunFeature(c *gin.Context) {
	f, err := parseFeatureParam(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RunFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for run feature", "feature", f, "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	h.run(c, f, req)
}

// RunFeatureWithUpload handles POST /features/:feature/upload. The resume
// arrives as a PDF, DOCX or plain text file and replaces resumeText.
// @Summary Run an AI feature with a resume upload
// @Description Same gating as the JSON endpoint; the uploaded file replaces resumeText.
// @Tags Features
// @Accept multipart/form-data
// @Produce json
// @Param feature path string true "Feature" Enums(job-fit, resume-review, cover-letter, interview-prep)
// @Param Idempotency-Key header string false "Action id; a replayed key returns 409"
// @Param resume formData file true "Resume (PDF, DOCX or text)"
// @Param jobTitle formData string false "Job title"
// @Param companyName formData string false "Company name"
// @Param jobDescription formData string false "Job description"
// @Param notes formData string false "Notes"
// @Param fingerprint formData string false "Browser fingerprint (anonymous only)"
// @Success 200 {object} utils.APIResponse{data=FeatureResultDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 402 {object} utils.APIResponse{data=utils.UsageDenial}
// @Failure 409 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse{data=utils.UsageDenial}
// @Security Bearer
// @Router /api/v1/features/{feature}/upload [post]
func (h *FeatureHandler) RunFeatureWithUpload(c *gin.Context) {
	f, err := parseFeatureParam(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var req RunFeatureRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid form data", err.Error()))
		return
	}

	text, err := h.readResume(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	req.ResumeText = text

	h.run(c, f, req)
}

func (h *FeatureHandler) readResume(c *gin.Context) (string, error) {
	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperrors.NewValidationError("resume file is too large")
		}
		return "", apperrors.NewValidationError("resume file is required", err.Error())
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return "", apperrors.NewValidationError("resume file is too large")
	}

	file, err := fh.Open()
	if err != nil {
		return "", apperrors.NewValidationError("failed to read resume file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewValidationError("failed to read resume file")
	}

	text, err := h.extractor.Extract(c.Request.Context(), fh.Filename, data)
	switch {
	case errors.Is(err, docparse.ErrUnsupportedFormat):
		return "", apperrors.NewValidationError("unsupported resume format", "use PDF, DOCX or plain text")
	case errors.Is(err, docparse.ErrNoText):
		return "", apperrors.NewValidationError("resume file contains no readable text")
	case err != nil:
		h.logger.Warnw("resume extraction failed", "filename", fh.Filename, "error", err)
		return "", apperrors.NewValidationError("failed to read resume file")
	}
	return text, nil
}

func (h *FeatureHandler) run(c *gin.Context, f quota.Feature, req RunFeatureRequest) {
	cmd := featureuc.RunFeatureCommand{
		Feature:     f,
		Input:       req.toInput(),
		Fingerprint: req.Fingerprint,
		ActionID:    c.GetHeader(constants.HeaderIdempotencyKey),
	}
	if ip := middleware.GetClientIP(c); ip != utils.UnknownIP {
		cmd.IPAddress = ip
	}
	if p, ok := middleware.GetPrincipal(c); ok {
		identity := p.Identity
		cmd.User = &identity
		cmd.Tier = p.Tier
	}

	result, err := h.runFeatureUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if d := result.Denied; d != nil {
		body := toDenialBody(d)
		if d.Reason == featureuc.DenialAllowanceExhausted {
			utils.AllowanceExhaustedResponse(c, body)
			return
		}
		utils.RateLimitedResponse(c, body, h.clock())
		return
	}

	if result.Preview != nil {
		utils.SuccessResponse(c, http.StatusOK, "", FeatureResultDTO{
			FeatureType:      f.String(),
			PreviewSessionID: result.Preview.SessionID,
			Teaser:           result.Preview.Teaser,
			Locked:           result.Preview.Locked,
		})
		return
	}

	resp := FeatureResultDTO{
		FeatureType: f.String(),
		Content:     result.Content,
	}
	if html, err := h.markdown.ToHTMLSanitized(result.Content); err == nil {
		resp.ContentHTML = html
	} else {
		h.logger.Warnw("failed to render feature content", "feature", f, "error", err)
	}
	if u := result.Usage; u != nil {
		utils.SetRateLimitHeaders(c, u.Limit, u.Remaining, u.ResetAt)
		resp.Usage = &UsageDTO{Limit: u.Limit, Remaining: u.Remaining, ResetAt: u.ResetAt}
	}
	if result.Allowance != nil {
		a := toAllowanceDTO(*result.Allowance)
		resp.Allowance = &a
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func parseFeatureParam(c *gin.Context) (quota.Feature, error) {
	f, err := quota.ParseFeature(c.Param("feature"))
	if err != nil {
		return "", apperrors.NewNotFoundError("unknown feature", c.Param("feature"))
	}
	return f, nil
}
