package selection

import (
	"fmt"
	"time"

	"worknow/internal/models"
	"worknow/internal/timefmt"
)

// DayRangePicker builds a whole-day booking over an inclusive calendar
// range. There is no time-of-day component.
type DayRangePicker struct {
	now func() time.Time

	from time.Time
	to   time.Time
	set  bool
}

func NewDayRangePicker(now func() time.Time) *DayRangePicker {
	return &DayRangePicker{now: defaultNow(now)}
}

// SetRange picks the inclusive [from, to] range. The range must not start
// before today and must not be reversed.
func (p *DayRangePicker) SetRange(from, to time.Time) error {
	today := timefmt.DayStart(p.now())
	fromDay := timefmt.DayStart(from)
	toDay := timefmt.DayStart(to)

	if fromDay.Before(today) {
		return ErrDateInPast
	}
	if toDay.Before(fromDay) {
		return ErrRangeReversed
	}

	p.from = fromDay
	p.to = toDay
	p.set = true
	return nil
}

// Range resolves the selection to the day bounds of the picked range.
func (p *DayRangePicker) Range() (Range, error) {
	if !p.set {
		return Range{}, ErrNoDate
	}
	return Range{
		Start:    p.from,
		End:      timefmt.DayEnd(p.to),
		Category: models.CategoryDay,
	}, nil
}

// Labels renders the display strings for the picked range.
func (p *DayRangePicker) Labels() (string, string) {
	if !p.set {
		return "", ""
	}
	return fmt.Sprintf("Bắt đầu %s", timefmt.FormatDate(p.from)),
		fmt.Sprintf("Kết thúc %s", timefmt.FormatDate(p.to))
}

// Days returns the number of calendar days in the range, inclusive.
func (p *DayRangePicker) Days() int {
	if !p.set {
		return 0
	}
	return int(p.to.Sub(p.from)/(24*time.Hour)) + 1
}
