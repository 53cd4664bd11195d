package recurring

import (
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// OnceCalculator handles non-recurring tasks: the anchor is the only occurrence.
type OnceCalculator struct{}

func (c *OnceCalculator) Matches(anchor, candidate calendar.Date) bool {
	return candidate.Equal(anchor)
}

func (c *OnceCalculator) NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool) {
	if from.After(anchor) {
		return calendar.Date{}, false
	}
	return anchor, true
}

// DailyCalculator generates an occurrence every day from the anchor.
type DailyCalculator struct{}

func (c *DailyCalculator) Matches(anchor, candidate calendar.Date) bool {
	return !candidate.Before(anchor)
}

func (c *DailyCalculator) NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool) {
	return calendar.Max(anchor, from), true
}

// WeeklyCalculator generates an occurrence every 7 days from the anchor.
type WeeklyCalculator struct{}

func (c *WeeklyCalculator) Matches(anchor, candidate calendar.Date) bool {
	if candidate.Before(anchor) {
		return false
	}
	return calendar.DaysBetween(anchor, candidate)%7 == 0
}

func (c *WeeklyCalculator) NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool) {
	if !from.After(anchor) {
		return anchor, true
	}
	weeks := (calendar.DaysBetween(anchor, from) + 6) / 7
	return anchor.AddDays(7 * weeks), true
}

// MonthlyCalculator generates an occurrence on the anchor's day of month.
// In months shorter than that day the occurrence falls on the month's last day.
//
// Occurrence k is always derived from the anchor (anchor + k months), never from
// the previous occurrence, so a 31st anchor returns to the 31st after February.
type MonthlyCalculator struct{}

func (c *MonthlyCalculator) Matches(anchor, candidate calendar.Date) bool {
	if candidate.Before(anchor) {
		return false
	}
	want := min(anchor.Day(), calendar.DaysIn(candidate.Year(), candidate.Month()))
	return candidate.Day() == want
}

func (c *MonthlyCalculator) NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool) {
	if !from.After(anchor) {
		return anchor, true
	}
	k := calendar.MonthsBetween(anchor, from)
	next := anchor.AddMonths(k)
	if next.Before(from) {
		next = anchor.AddMonths(k + 1)
	}
	return next, true
}

// WeekdaysCalculator generates occurrences on a fixed set of weekdays.
// The anchor is not special-cased: it is an occurrence only if its weekday is selected.
// An empty set never occurs.
type WeekdaysCalculator struct {
	Days domain.WeekdaySet
}

func (c *WeekdaysCalculator) Matches(anchor, candidate calendar.Date) bool {
	if candidate.Before(anchor) {
		return false
	}
	return c.Days.Has(candidate.Weekday())
}

func (c *WeekdaysCalculator) NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool) {
	if c.Days.Empty() {
		return calendar.Date{}, false
	}
	start := calendar.Max(anchor, from)

	// Any selected weekday appears within 7 consecutive days.
	for i := range 7 {
		d := start.AddDays(i)
		if c.Days.Has(d.Weekday()) {
			return d, true
		}
	}
	return calendar.Date{}, false
}
