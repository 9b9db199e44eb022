package selection

import (
	"testing"
	"time"

	"worknow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHourlyPickerFutureDayStartsAtOpening(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 23, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))

	require.NoError(t, p.SetDate(now.AddDate(0, 0, 1)))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 8, r.Start.Hour())
	assert.Equal(t, 0, r.Start.Minute())
	assert.Equal(t, time.Hour, r.End.Sub(r.Start))
	assert.Equal(t, models.CategoryHour, r.Category)
}

func TestHourlyPickerClampsToOpening(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 23, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))
	require.NoError(t, p.SetDate(now.AddDate(0, 0, 1)))

	// 06:30 is before the venue opens
	require.NoError(t, p.SetStart(6, 30))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 8, r.Start.Hour())
	assert.Equal(t, 0, r.Start.Minute())
	assert.Equal(t, 9, r.End.Hour())
}

func TestHourlyPickerTodayStartsNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 23, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))

	require.NoError(t, p.SetDate(now))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 14, r.Start.Hour())
	assert.Equal(t, 23, r.Start.Minute())
	assert.Equal(t, time.Hour, r.End.Sub(r.Start))
}

func TestHourlyPickerClampsPastEdit(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 23, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))
	require.NoError(t, p.SetDate(now))

	// editing to 10:00 today would be in the past
	require.NoError(t, p.SetStart(10, 0))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 14, r.Start.Hour())
	assert.Equal(t, 23, r.Start.Minute())
}

func TestHourlyPickerAllowsFutureEdit(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))
	require.NoError(t, p.SetDate(now))
	require.NoError(t, p.SetStart(10, 0))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 10, r.Start.Hour())
	assert.Equal(t, 11, r.End.Hour())
	assert.Equal(t, time.Hour, r.End.Sub(r.Start))
}

func TestHourlyPickerClampsToClosing(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))
	require.NoError(t, p.SetDate(now))
	require.NoError(t, p.SetStart(21, 30))

	r, err := p.Range()
	require.NoError(t, err)
	assert.Equal(t, 22, r.End.Hour())
	assert.Equal(t, 0, r.End.Minute())
	assert.True(t, r.End.Sub(r.Start) < time.Hour)
}

func TestHourlyPickerRejectsPastDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))

	err := p.SetDate(now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrDateInPast)
}

func TestHourlyPickerRejectsBadClock(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	p := NewHourlyPicker(8, 22, fixedNow(now))
	require.NoError(t, p.SetDate(now))

	assert.ErrorIs(t, p.SetStart(24, 0), ErrInvalidClock)
	assert.ErrorIs(t, p.SetStart(10, 61), ErrInvalidClock)
}

func TestHourlyPickerNeedsDate(t *testing.T) {
	p := NewHourlyPicker(8, 22, nil)

	_, err := p.Range()
	assert.ErrorIs(t, err, ErrNoDate)
	assert.ErrorIs(t, p.SetStart(10, 0), ErrNoDate)
}
