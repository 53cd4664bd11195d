// Package calendar provides naive calendar dates and the arithmetic the
// recurrence engine relies on.
//
// A Date carries a year, month and day only. It has no time-of-day and no
// zone: "2024-06-10" is the same Date wherever it is evaluated. Dates are
// derived from instants in the instant's own location, so the local
// calendar of the caller decides which day "now" is.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical YYYY-MM-DD date key layout.
const Layout = "2006-01-02"

// ErrInvalidDate indicates a date string is not a valid YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid calendar date")

// Date is a naive calendar date.
// The zero value represents "no date"; use IsZero to test for it.
type Date struct {
	// t is always midnight UTC. UTC has no DST transitions, which keeps
	// day arithmetic exact.
	t time.Time
}

// New returns the date for the given year, month and day.
// Out-of-range values are normalized the way time.Date normalizes them
// (so New(2024, 2, 30) is 2024-03-01). Use AddMonths for clamping arithmetic.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the calendar date of now.
func Today(now time.Time) Date {
	return FromTime(now)
}

// Parse parses a strict YYYY-MM-DD date key.
// Nonexistent dates such as 2023-02-29 are rejected, never coerced.
func Parse(s string) (Date, error) {
	if len(s) != len(Layout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for constants and tests.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Key returns the canonical YYYY-MM-DD key for d, or "" for the zero Date.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// String returns Key.
func (d Date) String() string {
	return d.Key()
}

// Year returns the year of d.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of month of d.
func (d Date) Day() int { return d.t.Day() }

// Weekday returns the day of the week of d (Sunday = 0).
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Compare returns -1 if d is before other, 0 if equal and +1 if after.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddDays returns d shifted by n days. n may be negative.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns d shifted by n months.
// When the target month is shorter than d's day of month, the result is
// clamped to the target month's last day: 2024-01-31 + 1 month is
// 2024-02-29, not 2024-03-02.
func (d Date) AddMonths(n int) Date {
	y, m, day := d.t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := DaysIn(first.Year(), first.Month())
	return New(first.Year(), first.Month(), min(day, last))
}

// AddYears returns d shifted by n years, clamping Feb 29 to Feb 28 in
// non-leap target years.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// Midnight returns the instant d begins in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59 on d in loc.
func (d Date) EndOfDay(loc *time.Location) time.Time {
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 23, 59, 59, 0, loc)
}

// MarshalText encodes d as its YYYY-MM-DD key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

// UnmarshalText decodes a YYYY-MM-DD key. An empty string decodes to the
// zero Date; anything else must be a valid calendar date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the number of days from a to b (negative if b is before a).
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t) / (24 * time.Hour))
}

// MonthsBetween returns the number of calendar-month boundaries from a to b,
// ignoring the day of month: MonthsBetween(Jan 31, Feb 1) is 1.
func MonthsBetween(a, b Date) int {
	return (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
}

// CompareDatesOnly compares the calendar dates of two instants, ignoring
// time of day. Each instant is read in its own location.
func CompareDatesOnly(a, b time.Time) int {
	return FromTime(a).Compare(FromTime(b))
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
