// Package schedule reconciles a workspace's raw reservation list into the
// per-day buckets shown to the user as "already taken" time.
package schedule

import (
	"sort"
	"time"

	"worknow/internal/models"
	"worknow/internal/timefmt"
)

// Entry is one blocking window inside a bucket. FullDay is set when the
// entry is a Day-category window projected onto the bucket's day.
type Entry struct {
	Window  models.TimeWindow    `json:"window"`
	FullDay *models.FullDayBlock `json:"fullDay,omitempty"`
}

// Bucket is the list of blocking windows for one calendar day, or for the
// "by day" view when Day is zero. Available is true when the bucket is
// genuinely empty, so the UI can distinguish "free" from "not loaded".
type Bucket struct {
	Day       time.Time `json:"day,omitempty"`
	Available bool      `json:"available"`
	Entries   []Entry   `json:"entries"`
}

// Overview groups the buckets the detail page renders.
type Overview struct {
	Today    Bucket `json:"today"`
	Tomorrow Bucket `json:"tomorrow"`
	DayAfter Bucket `json:"dayAfter"`
	ByDay    Bucket `json:"byDay"`
}

// DayBucket collects the blocking windows affecting one calendar day.
// Hourly windows qualify when their start or end falls on the day; daily
// windows qualify when the day lies inside their range and are projected to
// a FullDayBlock clamped to the day's bounds.
func DayBucket(windows []models.TimeWindow, day time.Time) Bucket {
	dayStart := timefmt.DayStart(day)
	dayEnd := timefmt.DayEnd(day)

	var entries []Entry
	for _, w := range windows {
		if !w.Blocking() {
			continue
		}

		switch w.Category {
		case models.CategoryHour:
			if timefmt.SameDay(w.StartDate, day) || timefmt.SameDay(w.EndDate, day) {
				entries = append(entries, Entry{Window: w})
			}
		case models.CategoryDay:
			if w.StartDate.After(dayEnd) || w.EndDate.Before(dayStart) {
				continue
			}
			projected := w
			projected.StartDate = maxTime(w.StartDate, dayStart)
			projected.EndDate = minTime(w.EndDate, dayEnd)
			entries = append(entries, Entry{
				Window: projected,
				FullDay: &models.FullDayBlock{
					IsFullDay:         true,
					OriginalStartDate: w.StartDate,
					OriginalEndDate:   w.EndDate,
					DisplayDate:       dayStart,
				},
			})
		}
	}

	sortEntries(entries)
	return Bucket{Day: dayStart, Available: len(entries) == 0, Entries: entries}
}

// ByDayBucket lists all current-or-future Day-category blocking windows
// without per-day projection.
func ByDayBucket(windows []models.TimeWindow, now time.Time) Bucket {
	today := timefmt.DayStart(now)

	var entries []Entry
	for _, w := range windows {
		if !w.Blocking() || w.Category != models.CategoryDay {
			continue
		}
		if w.EndDate.Before(today) {
			continue
		}
		entries = append(entries, Entry{Window: w})
	}

	sortEntries(entries)
	return Bucket{Available: len(entries) == 0, Entries: entries}
}

// BuildOverview produces the today/tomorrow/day-after and by-day buckets
// from one availability snapshot.
func BuildOverview(windows []models.TimeWindow, now time.Time) Overview {
	return Overview{
		Today:    DayBucket(windows, now),
		Tomorrow: DayBucket(windows, now.AddDate(0, 0, 1)),
		DayAfter: DayBucket(windows, now.AddDate(0, 0, 2)),
		ByDay:    ByDayBucket(windows, now),
	}
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Window.StartDate.Before(entries[j].Window.StartDate)
	})
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
