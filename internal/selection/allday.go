package selection

import (
	"fmt"
	"time"

	"worknow/internal/models"
	"worknow/internal/timefmt"
)

// AllDayPicker builds a booking for venues open around the clock. The range
// may cross midnight: a start at hour 23 naturally lands its derived end on
// hour 0 of the next calendar day. The start date is limited to a short
// advance window (today or tomorrow by default).
type AllDayPicker struct {
	maxAdvanceDays int
	minDuration    time.Duration
	now            func() time.Time

	start    time.Time
	end      time.Time
	hasStart bool
	hasEnd   bool
}

func NewAllDayPicker(maxAdvanceDays int, minDuration time.Duration, now func() time.Time) *AllDayPicker {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if minDuration <= 0 {
		minDuration = time.Hour
	}
	return &AllDayPicker{
		maxAdvanceDays: maxAdvanceDays,
		minDuration:    minDuration,
		now:            defaultNow(now),
	}
}

// SetStartDate picks the start day. Only days within the advance window are
// accepted.
func (p *AllDayPicker) SetStartDate(date time.Time) error {
	now := p.now()
	day := timefmt.DayStart(date)
	today := timefmt.DayStart(now)

	if day.Before(today) {
		return ErrDateInPast
	}
	if day.After(today.AddDate(0, 0, p.maxAdvanceDays)) {
		return ErrDateTooFar
	}

	if timefmt.SameDay(date, now) {
		p.start = timefmt.At(date, now.Hour(), now.Minute())
	} else {
		p.start = day
	}
	p.hasStart = true
	p.hasEnd = false
	return nil
}

// SetStartTime applies a manual start edit, clamping into the future when
// the start day is today.
func (p *AllDayPicker) SetStartTime(hour, minute int) error {
	if !p.hasStart {
		return ErrNoDate
	}
	if !validClock(hour, minute) {
		return ErrInvalidClock
	}

	start := timefmt.At(p.start, hour, minute)
	now := p.now()
	if timefmt.SameDay(p.start, now) && start.Before(now) {
		start = timefmt.At(p.start, now.Hour(), now.Minute())
	}
	p.start = start
	p.hasEnd = false
	return nil
}

// SetEnd picks an explicit end, which may fall on the next calendar day.
func (p *AllDayPicker) SetEnd(date time.Time, hour, minute int) error {
	if !p.hasStart {
		return ErrNoDate
	}
	if !validClock(hour, minute) {
		return ErrInvalidClock
	}

	end := timefmt.At(date, hour, minute)
	if end.Before(p.start.Add(p.minDuration)) {
		return ErrEndBeforeMin
	}

	p.end = end
	p.hasEnd = true
	return nil
}

// Range resolves the selection. Without an explicit end the range is the
// minimum duration past the start, which wraps the end date across midnight
// when the start hour is 23.
func (p *AllDayPicker) Range() (Range, error) {
	if !p.hasStart {
		return Range{}, ErrNoDate
	}

	end := p.end
	if !p.hasEnd {
		end = p.start.Add(p.minDuration)
	}
	if !end.After(p.start) {
		return Range{}, ErrRangeReversed
	}

	return Range{Start: p.start, End: end, Category: models.CategoryHour}, nil
}

// Duration renders the selected length as "hours:minutes" for display; it
// carries no authority over the resolved range.
func (p *AllDayPicker) Duration() string {
	r, err := p.Range()
	if err != nil {
		return "0:00"
	}
	d := r.End.Sub(r.Start)
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%d:%02d", hours, minutes)
}

// Reset abandons the in-progress selection so a half-made range never
// reaches the cart.
func (p *AllDayPicker) Reset() {
	p.hasStart = false
	p.hasEnd = false
	p.start = time.Time{}
	p.end = time.Time{}
}
