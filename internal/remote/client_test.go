package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"worknow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceTimes(t *testing.T) {
	windows := []models.TimeWindow{
		{
			StartDate: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
			Status:    models.StatusInUse,
			Category:  models.CategoryHour,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/booking/workspacetimes", r.URL.Path)
		assert.Equal(t, "ws-1", r.URL.Query().Get("WorkspaceId"))
		json.NewEncoder(w).Encode(map[string]any{"workspaceTimes": windows})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	got, err := client.WorkspaceTimes(context.Background(), "ws-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusInUse, got[0].Status)
	assert.True(t, got[0].Blocking())
}

func TestWorkspaceTimesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"workspaceTimes": []models.TimeWindow{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	got, err := client.WorkspaceTimes(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWorkspaceTimesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	_, err := client.WorkspaceTimes(context.Background(), "ws-1")
	assert.Error(t, err)
}

func TestCheckTimesOverlapSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/booking/checktimesoverlap", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ws-1", body["workspaceId"])
		assert.Equal(t, "10:00 01/06/2024", body["startDate"])

		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second)
	err := client.CheckTimesOverlap(context.Background(), "ws-1", "10:00 01/06/2024", "11:00 01/06/2024")
	assert.NoError(t, err)
}

func TestCheckTimesOverlapSentinels(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantErr error
	}{
		{"conflict plain", MsgTimeRangeInUse, http.StatusOK, ErrTimeRangeInUse},
		{"conflict quoted", `"` + MsgTimeRangeInUse + `"`, http.StatusBadRequest, ErrTimeRangeInUse},
		{"outside hours", MsgOutsideOperatingHours, http.StatusOK, ErrOutsideOperatingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", time.Second)
			err := client.CheckTimesOverlap(context.Background(), "ws-1", "10:00 01/06/2024", "11:00 01/06/2024")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckTimesOverlapTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	err := client.CheckTimesOverlap(context.Background(), "ws-1", "10:00 01/06/2024", "11:00 01/06/2024")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeRangeInUse)
	assert.NotErrorIs(t, err, ErrOutsideOperatingHours)
}

func TestWorkspace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-9", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(map[string]any{"workspace": models.Workspace{
			ID: "ws-9", Title: "Văn phòng 24h", Open24h: true, PricePerHour: 50000,
		}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second)
	ws, err := client.Workspace(context.Background(), "ws-9")
	require.NoError(t, err)
	assert.Equal(t, "ws-9", ws.ID)
	assert.True(t, ws.Open24h)
	assert.Equal(t, int64(50000), ws.PriceFor(models.PriceModeHourly))
}
