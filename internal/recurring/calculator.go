package recurring

import (
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// PatternCalculator evaluates one recurrence rule for a series anchored at a date.
//
// Callers guarantee that dates passed in are on or after the anchor;
// calculators still answer false / no occurrence for earlier dates.
type PatternCalculator interface {
	// Matches reports whether candidate is an occurrence of the series.
	Matches(anchor, candidate calendar.Date) bool

	// NextOccurrence returns the earliest occurrence on or after from.
	// Returns false if the series has no occurrence on or after from.
	NextOccurrence(anchor, from calendar.Date) (calendar.Date, bool)
}

// GetCalculator returns the calculator for the given rule.
// Returns nil for unknown rule types.
func GetCalculator(rule domain.Repetition) PatternCalculator {
	switch rule.Kind() {
	case domain.RepetitionNone:
		return &OnceCalculator{}
	case domain.RepetitionDaily:
		return &DailyCalculator{}
	case domain.RepetitionWeekly:
		return &WeeklyCalculator{}
	case domain.RepetitionMonthly:
		return &MonthlyCalculator{}
	case domain.RepetitionCustom:
		return &WeekdaysCalculator{Days: rule.Days}
	default:
		return nil
	}
}

// IsOccurrence reports whether candidate is a due date of task.
// Dates before the anchor are never occurrences. Unknown rules never occur.
func IsOccurrence(task domain.Task, candidate calendar.Date) bool {
	if task.Deadline.IsZero() || candidate.Before(task.Deadline) {
		return false
	}
	calc := GetCalculator(task.Repetition)
	if calc == nil {
		return false
	}
	return calc.Matches(task.Deadline, candidate)
}
