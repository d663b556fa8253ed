package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	previewuc "github.com/applytrack/applytrack/internal/application/preview/usecases"
	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/interfaces/http/handlers/testutil"
	"github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/services/markdown"
)

type mockConvertPreviewUC struct {
	result *previewuc.ConvertPreviewSessionResult
	err    error
	cmd    previewuc.ConvertPreviewSessionCommand
	calls  int
}

func (m *mockConvertPreviewUC) Execute(ctx context.Context, cmd previewuc.ConvertPreviewSessionCommand) (*previewuc.ConvertPreviewSessionResult, error) {
	m.calls++
	m.cmd = cmd
	return m.result, m.err
}

type mockGetPreviewUC struct {
	result *previewuc.PreviewSessionView
	err    error
}

func (m *mockGetPreviewUC) Execute(ctx context.Context, sessionID string) (*previewuc.PreviewSessionView, error) {
	return m.result, m.err
}

func newTestPreviewHandler(convert convertPreviewSessionUseCase, get getPreviewSessionUseCase) *PreviewHandler {
	return NewPreviewHandler(convert, get, markdown.NewService(), testutil.NewMockLogger())
}

func TestPreviewHandler_Convert_Success(t *testing.T) {
	uc := &mockConvertPreviewUC{result: &previewuc.ConvertPreviewSessionResult{
		Analysis:    "## Fit score\n\n82/100",
		FeatureType: quota.FeatureJobFit,
		InputData:   feature.Input{JobTitle: "SRE", ResumeText: "Ten years on call."},
	}}
	h := newTestPreviewHandler(uc, &mockGetPreviewUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/preview-sessions/convert", ConvertPreviewRequest{SessionID: "ps_abc"})
	testutil.SetAuthContext(c, "u1", quota.TierFree)

	h.Convert(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ps_abc", uc.cmd.SessionID)
	assert.Equal(t, "u1", uc.cmd.UserID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data ConvertPreviewResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "## Fit score\n\n82/100", data.Analysis)
	assert.Equal(t, "job_fit", data.FeatureType)
	assert.Equal(t, "SRE", data.InputData.JobTitle)
	assert.Contains(t, data.AnalysisHTML, "82/100")
}

func TestPreviewHandler_Convert_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not found", errors.NewSessionNotFoundError("preview session not found"), http.StatusNotFound, "session_not_found"},
		{"already converted", errors.NewAlreadyConvertedError("preview session already converted"), http.StatusConflict, "already_converted"},
		{"decryption failure", errors.NewDecryptionFailureError("preview content unavailable"), http.StatusInternalServerError, "decryption_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestPreviewHandler(&mockConvertPreviewUC{err: tt.err}, &mockGetPreviewUC{})

			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/preview-sessions/convert", ConvertPreviewRequest{SessionID: "ps_abc"})
			testutil.SetAuthContext(c, "u1", quota.TierFree)

			h.Convert(c)

			require.Equal(t, tt.wantStatus, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantType, resp.Error.Type)
		})
	}
}

func TestPreviewHandler_Convert_RequiresPrincipal(t *testing.T) {
	uc := &mockConvertPreviewUC{}
	h := newTestPreviewHandler(uc, &mockGetPreviewUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/preview-sessions/convert", ConvertPreviewRequest{SessionID: "ps_abc"})

	h.Convert(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, uc.calls)
}

func TestPreviewHandler_Convert_MissingSessionID(t *testing.T) {
	uc := &mockConvertPreviewUC{}
	h := newTestPreviewHandler(uc, &mockGetPreviewUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/preview-sessions/convert", map[string]string{})
	testutil.SetAuthContext(c, "u1", quota.TierFree)

	h.Convert(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, uc.calls)
}

func TestPreviewHandler_Get(t *testing.T) {
	h := newTestPreviewHandler(&mockConvertPreviewUC{}, &mockGetPreviewUC{result: &previewuc.PreviewSessionView{
		SessionID:   "ps_abc",
		FeatureType: quota.FeatureCoverLetter,
		Teaser:      "Dear hiring",
		TeaserHTML:  "<p>Dear hiring</p>",
		Locked:      true,
		CreatedAt:   handlerNow,
	}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/preview-sessions/ps_abc", nil)
	testutil.SetURLParam(c, "id", "ps_abc")

	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data PreviewSessionDTO
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "cover_letter", data.FeatureType)
	assert.True(t, data.Locked)
	assert.NotContains(t, w.Body.String(), "analysis")
}
