package repository

import (
	"context"
	"testing"
	"time"

	"worknow/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetCart", func(t *testing.T) {
		cart := &models.CartSelection{
			SessionID:    "sess-1",
			WorkspaceID:  "ws-1",
			PriceMode:    models.PriceModeHourly,
			PricePerUnit: 50000,
			StartTime:    "10:00 01/06/2024",
			EndTime:      "11:00 01/06/2024",
			Total:        50000,
		}

		require.NoError(t, repo.SaveCart(ctx, cart))

		got, err := repo.GetCart(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, cart.WorkspaceID, got.WorkspaceID)
		assert.Equal(t, cart.Total, got.Total)
		assert.True(t, got.HasTime())
	})

	t.Run("GetMissingCart", func(t *testing.T) {
		got, err := repo.GetCart(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearCart", func(t *testing.T) {
		repo.SaveCart(ctx, &models.CartSelection{SessionID: "sess-2"})

		require.NoError(t, repo.ClearCart(ctx, "sess-2"))

		got, _ := repo.GetCart(ctx, "sess-2")
		assert.Nil(t, got)
	})

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.SessionState{
			SessionID:   "sess-3",
			CurrentStep: models.StepSelectTime,
			TempData:    map[string]interface{}{"workspace_id": "ws-1"},
		}

		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, "sess-3")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StepSelectTime, got.CurrentStep)
		assert.Equal(t, "ws-1", got.GetString("workspace_id"))
	})

	t.Run("ClearState", func(t *testing.T) {
		repo.SetState(ctx, &models.SessionState{SessionID: "sess-4", CurrentStep: models.StepSelectDate})

		require.NoError(t, repo.ClearState(ctx, "sess-4"))

		got, _ := repo.GetState(ctx, "sess-4")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, "client-1", 2, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, "client-1", 2, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, "client-1", 2, time.Second)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("CartExpires", func(t *testing.T) {
		short := NewRedisSessionRepository(client, time.Minute)
		require.NoError(t, short.SaveCart(ctx, &models.CartSelection{SessionID: "sess-ttl"}))

		s.FastForward(2 * time.Minute)

		got, err := short.GetCart(ctx, "sess-ttl")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
