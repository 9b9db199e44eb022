package models

import "time"

// TimeWindow is one reservation period of a workspace, either fetched from
// the marketplace backend or constructed for the pending selection.
// A displayed window is never mutated; a new selection replaces it.
type TimeWindow struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	Category  string    `json:"category"`
}

// Blocking reports whether the window prevents a new booking.
func (w TimeWindow) Blocking() bool {
	return w.Status == StatusInUse || w.Status == StatusHandling
}

// FullDayBlock is a view-only projection of a Day-category window onto a
// single calendar day. The original bounds are kept so the UI can show the
// real range behind a "fully booked" day.
type FullDayBlock struct {
	IsFullDay         bool      `json:"isFullDay"`
	OriginalStartDate time.Time `json:"originalStartDate"`
	OriginalEndDate   time.Time `json:"originalEndDate"`
	DisplayDate       time.Time `json:"displayDate"`
}
