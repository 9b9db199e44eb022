package service

import (
	"context"
	"io"
	"testing"

	"worknow/internal/models"
	"worknow/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartService() *CartService {
	logger := zerolog.New(io.Discard)
	return NewCartService(repository.NewMemorySessionRepository(), nil, &logger)
}

func hourlyWorkspace() *models.Workspace {
	return &models.Workspace{
		ID:           "ws-1",
		Title:        "Phòng họp Sài Gòn",
		PricePerHour: 50000,
		PricePerDay:  300000,
		OpenHour:     8,
		CloseHour:    22,
	}
}

func TestSetWorkspaceWritesPricing(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	cart, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", cart.WorkspaceID)
	assert.Equal(t, int64(50000), cart.PricePerUnit)
	assert.Equal(t, models.PriceModeHourly, cart.PriceMode)
	assert.Equal(t, int64(0), cart.Total)
}

func TestSetWorkspaceSwitchingModeKeepsSelection(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)
	_, err = svc.SetTime(ctx, "sess-1", "10:00 01/06/2024", "11:00 01/06/2024")
	require.NoError(t, err)

	cart, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeDaily)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), cart.PricePerUnit)
	assert.True(t, cart.HasTime(), "same workspace keeps the chosen time")
}

func TestSetWorkspaceChangeResetsCart(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)
	_, err = svc.SetTime(ctx, "sess-1", "10:00 01/06/2024", "11:00 01/06/2024")
	require.NoError(t, err)
	_, err = svc.SetAmenity(ctx, "sess-1", models.CartLine{ID: "am-1", Quantity: 2, UnitPrice: 10000})
	require.NoError(t, err)

	other := hourlyWorkspace()
	other.ID = "ws-2"
	cart, err := svc.SetWorkspace(ctx, "sess-1", other, models.PriceModeHourly)
	require.NoError(t, err)

	assert.Equal(t, "ws-2", cart.WorkspaceID)
	assert.False(t, cart.HasTime())
	assert.Empty(t, cart.AmenityList)
	assert.Equal(t, int64(0), cart.Total)
}

func TestSetTimeRequiresBothBounds(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)

	_, err = svc.SetTime(ctx, "sess-1", "10:00 01/06/2024", "")
	assert.ErrorIs(t, err, ErrPartialTimeRange)
	_, err = svc.SetTime(ctx, "sess-1", "", "11:00 01/06/2024")
	assert.ErrorIs(t, err, ErrPartialTimeRange)

	// cart still has no partial range stored
	cart, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.StartTime)
	assert.Empty(t, cart.EndTime)
}

func TestSetTimeRejectsReversedRange(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)

	_, err = svc.SetTime(ctx, "sess-1", "11:00 01/06/2024", "10:00 01/06/2024")
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestTotalRecomputedOnEveryMutation(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)

	cart, err := svc.SetTime(ctx, "sess-1", "10:00 01/06/2024", "12:00 01/06/2024")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), cart.Total, "2 hours at 50000")

	cart, err = svc.SetAmenity(ctx, "sess-1", models.CartLine{ID: "am-1", Quantity: 2, UnitPrice: 10000})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), cart.Total)

	cart, err = svc.SetBeverage(ctx, "sess-1", models.CartLine{ID: "bv-1", Quantity: 3, UnitPrice: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(135000), cart.Total)

	// replacing a line recomputes rather than accumulates
	cart, err = svc.SetAmenity(ctx, "sess-1", models.CartLine{ID: "am-1", Quantity: 1, UnitPrice: 10000})
	require.NoError(t, err)
	assert.Equal(t, int64(125000), cart.Total)

	// quantity zero removes the line
	cart, err = svc.SetAmenity(ctx, "sess-1", models.CartLine{ID: "am-1", Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.AmenityList)
	assert.Equal(t, int64(115000), cart.Total)

	cart, err = svc.ClearBeverageAndAmenity(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), cart.Total)

	cart, err = svc.ClearTime(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.Total)
}

func TestDailyModeBillsInclusiveDays(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeDaily)
	require.NoError(t, err)

	cart, err := svc.SetTime(ctx, "sess-1", "00:00 01/06/2024", "23:59 03/06/2024")
	require.NoError(t, err)
	assert.Equal(t, int64(900000), cart.Total, "3 days at 300000")
}

func TestHourlyModeRoundsUpPartialHour(t *testing.T) {
	svc := newCartService()
	ctx := context.Background()

	_, err := svc.SetWorkspace(ctx, "sess-1", hourlyWorkspace(), models.PriceModeHourly)
	require.NoError(t, err)

	cart, err := svc.SetTime(ctx, "sess-1", "21:30 01/06/2024", "22:00 01/06/2024")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), cart.Total, "half an hour still bills one unit")
}

func TestSetTimeWithoutWorkspace(t *testing.T) {
	svc := newCartService()

	_, err := svc.SetTime(context.Background(), "sess-1", "10:00 01/06/2024", "11:00 01/06/2024")
	assert.ErrorIs(t, err, ErrNoWorkspace)
}
