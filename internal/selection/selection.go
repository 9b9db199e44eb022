// Package selection implements the time pickers of the booking flow. Each
// picker is a small state machine that accumulates user input and only
// releases a fully resolved (start, end) range.
package selection

import (
	"errors"
	"time"

	"worknow/internal/timefmt"
)

var (
	ErrNoDate        = errors.New("no date selected")
	ErrDateInPast    = errors.New("date is in the past")
	ErrDateTooFar    = errors.New("date is too far ahead")
	ErrInvalidClock  = errors.New("invalid hour or minute")
	ErrEndBeforeMin  = errors.New("end is before the minimum duration")
	ErrRangeReversed = errors.New("range end is before its start")
)

// Range is a resolved selection ready to be pushed to the cart.
type Range struct {
	Start    time.Time
	End      time.Time
	Category string
}

// StartLabel renders the start in the canonical display format.
func (r Range) StartLabel() string { return timefmt.Format(r.Start) }

// EndLabel renders the end in the canonical display format.
func (r Range) EndLabel() string { return timefmt.Format(r.End) }

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

func defaultNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
