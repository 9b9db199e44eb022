package selection

import (
	"time"

	"worknow/internal/models"
	"worknow/internal/timefmt"
)

// HourlyPicker builds a one-hour booking inside a venue's posted operating
// hours. Picking a date resets the start: to the current wall clock for
// today, to opening time for a future day. Starts before opening are pushed
// forward to opening. The end is always derived as start plus one hour,
// clamped to closing time; it is never set directly.
type HourlyPicker struct {
	openHour  int
	closeHour int
	now       func() time.Time

	date    time.Time
	start   time.Time
	hasDate bool
}

func NewHourlyPicker(openHour, closeHour int, now func() time.Time) *HourlyPicker {
	return &HourlyPicker{
		openHour:  openHour,
		closeHour: closeHour,
		now:       defaultNow(now),
	}
}

// SetDate picks the booking day and resets the start time accordingly.
func (p *HourlyPicker) SetDate(date time.Time) error {
	now := p.now()
	if timefmt.DayStart(date).Before(timefmt.DayStart(now)) {
		return ErrDateInPast
	}

	p.date = timefmt.DayStart(date)
	p.hasDate = true

	if timefmt.SameDay(date, now) {
		p.start = timefmt.At(date, now.Hour(), now.Minute())
	} else {
		p.start = p.date
	}
	p.start = p.clampToOpening(p.start)
	return nil
}

// SetStart applies a manual hour/minute edit. A start in the past is
// clamped to the current wall clock when the picked day is today, and a
// start before opening time is clamped to opening.
func (p *HourlyPicker) SetStart(hour, minute int) error {
	if !p.hasDate {
		return ErrNoDate
	}
	if !validClock(hour, minute) {
		return ErrInvalidClock
	}

	start := timefmt.At(p.date, hour, minute)
	now := p.now()
	if timefmt.SameDay(p.date, now) && start.Before(now) {
		start = timefmt.At(p.date, now.Hour(), now.Minute())
	}
	p.start = p.clampToOpening(start)
	return nil
}

func (p *HourlyPicker) clampToOpening(start time.Time) time.Time {
	if p.openHour <= 0 {
		return start
	}
	opening := timefmt.At(p.date, p.openHour, 0)
	if start.Before(opening) {
		return opening
	}
	return start
}

// Range resolves the selection: end is exactly one hour after start unless
// that would run past closing time, in which case it is clamped.
func (p *HourlyPicker) Range() (Range, error) {
	if !p.hasDate {
		return Range{}, ErrNoDate
	}

	end := p.start.Add(time.Hour)
	if p.closeHour > 0 {
		closing := timefmt.At(p.date, p.closeHour, 0)
		if end.After(closing) {
			end = closing
		}
	}
	if !end.After(p.start) {
		return Range{}, ErrRangeReversed
	}

	return Range{Start: p.start, End: end, Category: models.CategoryHour}, nil
}
