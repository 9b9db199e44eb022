package service

import (
	"context"
	"time"

	"worknow/internal/config"
	"worknow/internal/domain"
	"worknow/internal/metrics"
	"worknow/internal/models"
	"worknow/internal/schedule"

	"github.com/rs/zerolog"
)

// AvailabilityService reads reservation snapshots from the backend and
// turns them into the unavailable-time buckets the detail page shows.
type AvailabilityService struct {
	backend      domain.BackendClient
	onFetchError string
	logger       *zerolog.Logger
}

func NewAvailabilityService(backend domain.BackendClient, onFetchError string, logger *zerolog.Logger) *AvailabilityService {
	if onFetchError == "" {
		onFetchError = config.FetchErrorAllow
	}
	return &AvailabilityService{backend: backend, onFetchError: onFetchError, logger: logger}
}

// Snapshot fetches the blocking windows for a workspace. On fetch failure
// the configured policy decides: "allow" degrades to an empty snapshot so
// booking stays possible, "block" propagates the error.
func (s *AvailabilityService) Snapshot(ctx context.Context, workspaceID string) ([]models.TimeWindow, error) {
	windows, err := s.backend.WorkspaceTimes(ctx, workspaceID)
	if err != nil {
		metrics.IncAvailabilityFetch(metrics.OutcomeError)
		if s.onFetchError == config.FetchErrorBlock {
			s.logger.Error().Err(err).Str("workspace_id", workspaceID).Msg("availability fetch failed")
			return nil, err
		}
		s.logger.Warn().Err(err).Str("workspace_id", workspaceID).Msg("availability fetch failed, treating workspace as fully available")
		return nil, nil
	}

	metrics.IncAvailabilityFetch(metrics.OutcomeOK)
	return windows, nil
}

// Overview builds the today/tomorrow/day-after and by-day buckets for a
// workspace at the given reference time.
func (s *AvailabilityService) Overview(ctx context.Context, workspaceID string, now time.Time) (schedule.Overview, error) {
	windows, err := s.Snapshot(ctx, workspaceID)
	if err != nil {
		return schedule.Overview{}, err
	}
	return schedule.BuildOverview(windows, now), nil
}
