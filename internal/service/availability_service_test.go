package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"worknow/internal/config"
	"worknow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityService(backend *stubBackend, policy string) *AvailabilityService {
	logger := zerolog.New(io.Discard)
	return NewAvailabilityService(backend, policy, &logger)
}

func TestSnapshotReturnsWindows(t *testing.T) {
	backend := &stubBackend{windows: []models.TimeWindow{
		{
			StartDate: time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local),
			EndDate:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local),
			Status:    models.StatusInUse,
			Category:  models.CategoryHour,
		},
	}}
	svc := newAvailabilityService(backend, config.FetchErrorAllow)

	windows, err := svc.Snapshot(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Len(t, windows, 1)
}

func TestSnapshotFetchErrorAllowPolicy(t *testing.T) {
	backend := &stubBackend{windowsErr: errors.New("backend down")}
	svc := newAvailabilityService(backend, config.FetchErrorAllow)

	windows, err := svc.Snapshot(context.Background(), "ws-1")
	require.NoError(t, err, "allow policy degrades to an empty snapshot")
	assert.Empty(t, windows)
}

func TestSnapshotFetchErrorBlockPolicy(t *testing.T) {
	fetchErr := errors.New("backend down")
	backend := &stubBackend{windowsErr: fetchErr}
	svc := newAvailabilityService(backend, config.FetchErrorBlock)

	_, err := svc.Snapshot(context.Background(), "ws-1")
	assert.ErrorIs(t, err, fetchErr)
}

func TestOverviewBucketsByDay(t *testing.T) {
	backend := &stubBackend{windows: []models.TimeWindow{
		{
			StartDate: time.Date(2024, 6, 2, 10, 0, 0, 0, time.Local),
			EndDate:   time.Date(2024, 6, 2, 12, 0, 0, 0, time.Local),
			Status:    models.StatusInUse,
			Category:  models.CategoryHour,
		},
		{
			StartDate: time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local),
			EndDate:   time.Date(2024, 6, 3, 11, 0, 0, 0, time.Local),
			Status:    models.StatusHandling,
			Category:  models.CategoryHour,
		},
	}}
	svc := newAvailabilityService(backend, config.FetchErrorAllow)

	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local)
	overview, err := svc.Overview(context.Background(), "ws-1", now)
	require.NoError(t, err)

	assert.Len(t, overview.Today.Entries, 1)
	assert.Len(t, overview.Tomorrow.Entries, 1)
	assert.Empty(t, overview.DayAfter.Entries)
}
