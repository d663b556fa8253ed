package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/interfaces/http/handlers/testutil"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fakeCounterStore struct{ up bool }

func (f fakeCounterStore) IsAvailable(ctx context.Context) bool { return f.up }
func (f fakeCounterStore) Name() string                         { return "redis" }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		storeUp    bool
		wantStatus int
		wantState  string
	}{
		{"all up", nil, true, http.StatusOK, "ok"},
		{"counter store down fails open", nil, false, http.StatusOK, "degraded"},
		{"database down", errors.New("connection refused"), true, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakePinger{err: tt.dbErr}, fakeCounterStore{up: tt.storeUp}, "test", testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)

			h.Health(c)

			require.Equal(t, tt.wantStatus, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Equal(t, "redis", resp.StoreBackend)
		})
	}
}
