package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"worknow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenRepository fails every call.
type brokenRepository struct{}

var errBroken = errors.New("repository down")

func (brokenRepository) GetCart(context.Context, string) (*models.CartSelection, error) {
	return nil, errBroken
}
func (brokenRepository) SaveCart(context.Context, *models.CartSelection) error { return errBroken }
func (brokenRepository) ClearCart(context.Context, string) error               { return errBroken }
func (brokenRepository) GetState(context.Context, string) (*models.SessionState, error) {
	return nil, errBroken
}
func (brokenRepository) SetState(context.Context, *models.SessionState) error { return errBroken }
func (brokenRepository) ClearState(context.Context, string) error             { return errBroken }
func (brokenRepository) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return false, errBroken
}

func TestFailoverFallsBackToMemory(t *testing.T) {
	logger := zerolog.New(io.Discard)
	fallback := NewMemorySessionRepository()
	repo := NewFailoverSessionRepository(brokenRepository{}, fallback, &logger)
	ctx := context.Background()

	cart := &models.CartSelection{SessionID: "sess-1", WorkspaceID: "ws-1"}
	require.NoError(t, repo.SaveCart(ctx, cart))

	got, err := repo.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ws-1", got.WorkspaceID)

	// subsequent writes go straight to the fallback
	require.NoError(t, repo.SetState(ctx, &models.SessionState{SessionID: "sess-1", CurrentStep: models.StepSelectDate}))
	state, err := repo.GetState(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.StepSelectDate, state.CurrentStep)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	logger := zerolog.New(io.Discard)
	primary := NewMemorySessionRepository()
	fallback := NewMemorySessionRepository()
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, &models.CartSelection{SessionID: "sess-1"}))

	got, err := primary.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = fallback.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
