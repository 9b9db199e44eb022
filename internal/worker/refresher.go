package worker

import (
	"context"
	"encoding/json"
	"time"

	"worknow/internal/models"
	"worknow/internal/remote"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotSource fetches the current reservation windows straight from the
// backend. It must bypass any read-through cache: the refresher writes the
// cache entry itself, and reading it back would freeze the snapshot on
// whatever the first fetch returned.
type SnapshotSource interface {
	FetchWorkspaceTimes(ctx context.Context, workspaceID string) ([]models.TimeWindow, error)
}

// SnapshotRefresher keeps the availability cache warm for the watched
// workspaces: it polls the backend on a fixed interval and writes each
// snapshot into Redis under the same key the read path uses, so the detail
// page rarely has to pay for a cold fetch.
type SnapshotRefresher struct {
	backend     SnapshotSource
	redis       *redis.Client
	workspaces  []string
	interval    time.Duration
	cacheTTL    time.Duration
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
}

func NewSnapshotRefresher(backend SnapshotSource, redisClient *redis.Client, workspaces []string, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *SnapshotRefresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	retry = retry.withDefaults()

	return &SnapshotRefresher{
		backend:     backend,
		redis:       redisClient,
		workspaces:  workspaces,
		interval:    interval,
		cacheTTL:    2 * interval,
		retryPolicy: retry,
		logger:      logger,
	}
}

// Start runs the refresh loop until ctx is done. The first pass runs
// immediately so the cache is warm right after startup.
func (r *SnapshotRefresher) Start(ctx context.Context) {
	r.logger.Info().
		Int("workspaces", len(r.workspaces)).
		Dur("interval", r.interval).
		Msg("snapshot refresher started")
	defer r.logger.Info().Msg("snapshot refresher stopped")

	r.RefreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll fetches and caches the snapshot of every watched workspace.
func (r *SnapshotRefresher) RefreshAll(ctx context.Context) {
	for _, id := range r.workspaces {
		if ctx.Err() != nil {
			return
		}
		if err := r.refreshOne(ctx, id); err != nil {
			r.logger.Error().Err(err).Str("workspace_id", id).Msg("snapshot refresh failed")
		}
	}
}

func (r *SnapshotRefresher) refreshOne(ctx context.Context, workspaceID string) error {
	windows, err := r.fetchWithRetry(ctx, workspaceID)
	if err != nil {
		return err
	}
	return r.cache(ctx, workspaceID, windows)
}

func (r *SnapshotRefresher) fetchWithRetry(ctx context.Context, workspaceID string) ([]models.TimeWindow, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retryPolicy.MaxRetries; attempt++ {
		windows, err := r.backend.FetchWorkspaceTimes(ctx, workspaceID)
		if err == nil {
			return windows, nil
		}
		lastErr = err

		if attempt == r.retryPolicy.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryPolicy.NextDelay(attempt)):
		}
	}
	return nil, lastErr
}

// cache stores the snapshot in the exact shape the client's read-through
// cache unmarshals, so both paths share one entry.
func (r *SnapshotRefresher) cache(ctx context.Context, workspaceID string, windows []models.TimeWindow) error {
	if r.redis == nil {
		return nil
	}

	wrap := struct {
		WorkspaceTimes []models.TimeWindow `json:"workspaceTimes"`
	}{WorkspaceTimes: windows}

	data, err := json.Marshal(wrap)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, remote.WorkspaceTimesCacheKey(workspaceID), data, r.cacheTTL).Err()
}
