// Package timefmt converts between the canonical display format of the
// booking flow ("HH:mm DD/MM/YYYY") and time.Time values.
package timefmt

import "time"

const (
	// Layout is the canonical date-time format shown to users and sent to
	// the overlap-check endpoint.
	Layout = "15:04 02/01/2006"

	// DateLayout is the date-only variant used by the day-range picker.
	DateLayout = "02/01/2006"
)

// Format renders t in the canonical layout, minute resolution.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse is the inverse of Format. Round trip is lossless for any time at
// minute resolution.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.Local)
}

// FormatDate renders the date part only.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a date-only string at midnight local time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// DayStart truncates t to midnight of its calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last representable minute of t's calendar day.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// At combines the calendar day of date with an hour/minute pair.
func At(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}
