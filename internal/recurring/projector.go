package recurring

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// Horizon returns the inclusive forward bound for calendar projection:
// one year from the calendar date of now.
func Horizon(now time.Time) calendar.Date {
	return calendar.Today(now).AddYears(1)
}

// Project returns the due dates of task within [max(deadline, start), end], ascending.
//
// The sequence is lazy and holds no state between iterations: ranging over it
// twice recomputes it from scratch. Iteration stops as soon as the cursor
// passes end, whatever the calculator reports.
func Project(task domain.Task, start, end calendar.Date) (iter.Seq[calendar.Date], error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", domain.ErrInvalidRange, end, start)
	}
	if task.Deadline.IsZero() {
		return nil, domain.ErrDeadlineRequired
	}

	calc := GetCalculator(task.Repetition)
	if calc == nil {
		return nil, fmt.Errorf("%w: unknown type %s", domain.ErrInvalidRepetition, task.Repetition.Type)
	}

	return project(calc, task.Deadline, start, end), nil
}

func project(calc PatternCalculator, anchor, start, end calendar.Date) iter.Seq[calendar.Date] {
	first := calendar.Max(anchor, start)

	return func(yield func(calendar.Date) bool) {
		cursor := first
		for !cursor.After(end) {
			next, ok := calc.NextOccurrence(anchor, cursor)
			if !ok || next.After(end) {
				return
			}
			// The cursor must strictly advance; a calculator answering with an
			// earlier date would otherwise never reach end.
			if next.Before(cursor) {
				return
			}
			if calc.Matches(anchor, next) && !yield(next) {
				return
			}
			cursor = next.AddDays(1)
		}
	}
}

// Occurrences collects Project into a slice.
func Occurrences(task domain.Task, start, end calendar.Date) ([]calendar.Date, error) {
	seq, err := Project(task, start, end)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// OccursOn reports whether task is due on d, projecting the single-day range [d, d].
func OccursOn(task domain.Task, d calendar.Date) (bool, error) {
	seq, err := Project(task, d, d)
	if err != nil {
		return false, err
	}
	for range seq {
		return true, nil
	}
	return false, nil
}
