package handlers

import (
	"time"

	featureuc "github.com/applytrack/applytrack/internal/application/feature/usecases"
	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/application/usage"
	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

// RunFeatureRequest is the JSON body of a feature run. Fingerprint is only
// read for anonymous visitors.
type RunFeatureRequest struct {
	JobTitle       string `json:"jobTitle" form:"jobTitle" binding:"omitempty,max=200"`
	CompanyName    string `json:"companyName" form:"companyName" binding:"omitempty,max=200"`
	JobDescription string `json:"jobDescription" form:"jobDescription" binding:"omitempty,max=20000"`
	ResumeText     string `json:"resumeText" form:"resumeText" binding:"omitempty,max=20000"`
	Notes          string `json:"notes" form:"notes" binding:"omitempty,max=5000"`
	Fingerprint    string `json:"fingerprint" form:"fingerprint" binding:"omitempty,max=128"`
}

func (r RunFeatureRequest) toInput() feature.Input {
	return feature.Input{
		JobTitle:       r.JobTitle,
		CompanyName:    r.CompanyName,
		JobDescription: r.JobDescription,
		ResumeText:     r.ResumeText,
		Notes:          r.Notes,
	}
}

type UsageDTO struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

type AllowanceDTO struct {
	Feature   string `json:"feature"`
	UsedCount int    `json:"usedCount"`
	Granted   any    `json:"granted"`
	CanUse    bool   `json:"canUse"`
}

func toAllowanceDTO(fa allowance.FeatureAllowance) AllowanceDTO {
	var granted any = "unlimited"
	if !fa.Granted.IsUnlimited() {
		granted = fa.Granted.Count()
	}
	return AllowanceDTO{
		Feature:   fa.Feature.String(),
		UsedCount: fa.UsedCount,
		Granted:   granted,
		CanUse:    fa.CanUse,
	}
}

// FeatureResultDTO is either a full result or a locked preview.
type FeatureResultDTO struct {
	FeatureType string `json:"featureType"`

	Content     string        `json:"content,omitempty"`
	ContentHTML string        `json:"contentHtml,omitempty"`
	Usage       *UsageDTO     `json:"usage,omitempty"`
	Allowance   *AllowanceDTO `json:"allowance,omitempty"`

	PreviewSessionID string `json:"previewSessionId,omitempty"`
	Teaser           string `json:"teaser,omitempty"`
	Locked           bool   `json:"locked"`
}

func toDenialBody(d *featureuc.Denial) utils.UsageDenial {
	used := d.UsedCount
	body := utils.UsageDenial{
		Reason:    string(d.Reason),
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt,
	}
	if d.Reason != featureuc.DenialRateLimited {
		body.UsedCount = &used
	}
	return body
}

type ConvertPreviewRequest struct {
	SessionID string `json:"session_id" binding:"required,max=64"`
}

type ConvertPreviewResponse struct {
	Analysis     string        `json:"analysis"`
	AnalysisHTML string        `json:"analysisHtml,omitempty"`
	FeatureType  string        `json:"featureType"`
	InputData    feature.Input `json:"inputData"`
}

type PreviewSessionDTO struct {
	SessionID   string    `json:"sessionId"`
	FeatureType string    `json:"featureType"`
	Teaser      string    `json:"teaser"`
	TeaserHTML  string    `json:"teaserHtml"`
	Locked      bool      `json:"locked"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPreviewSessionDTO(v *previewuc.PreviewSessionView) PreviewSessionDTO {
	return PreviewSessionDTO{
		SessionID:   v.SessionID,
		FeatureType: v.FeatureType.String(),
		Teaser:      v.Teaser,
		TeaserHTML:  v.TeaserHTML,
		Locked:      v.Locked,
		CreatedAt:   v.CreatedAt,
	}
}

type FeatureUsageDTO struct {
	Feature    string    `json:"feature"`
	Used       int       `json:"used"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	Window     string    `json:"window"`
	WindowType string    `json:"windowType"`
	ResetAt    time.Time `json:"resetAt"`
	Degraded   bool      `json:"degraded,omitempty"`
}

type UsageSummaryDTO struct {
	Tier       string            `json:"tier"`
	Features   []FeatureUsageDTO `json:"features"`
	Allowances []AllowanceDTO    `json:"allowances"`
}

func toUsageSummaryDTO(s *featureuc.UsageSummary) UsageSummaryDTO {
	out := UsageSummaryDTO{
		Tier:       s.Tier.String(),
		Features:   make([]FeatureUsageDTO, 0, len(s.Features)),
		Allowances: make([]AllowanceDTO, 0, len(s.Allowances)),
	}
	for _, st := range s.Features {
		out.Features = append(out.Features, toFeatureUsageDTO(st))
	}
	for _, fa := range s.Allowances {
		out.Allowances = append(out.Allowances, toAllowanceDTO(fa))
	}
	return out
}

func toFeatureUsageDTO(st quota.UsageStats) FeatureUsageDTO {
	return FeatureUsageDTO{
		Feature:    st.Feature.String(),
		Used:       st.Used,
		Limit:      st.Limit,
		Remaining:  st.Remaining,
		Window:     st.Window.String(),
		WindowType: string(st.WindowType),
		ResetAt:    st.ResetAt,
		Degraded:   st.Degraded,
	}
}

type AnonymousUsageDTO struct {
	Feature   string     `json:"feature"`
	CanUse    bool       `json:"canUse"`
	UsedCount int64      `json:"usedCount"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
}

func toAnonymousUsageDTO(f quota.Feature, st usage.LedgerStatus) AnonymousUsageDTO {
	return AnonymousUsageDTO{
		Feature:   f.String(),
		CanUse:    st.CanUse,
		UsedCount: st.UsedCount,
		ResetAt:   st.ResetAt,
	}
}
