// Package agenda builds the task list views: the day view of everything due
// on one date and the filtered main list.
package agenda

import (
	"slices"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/recurring"
)

// Entry is a task viewed on one of its dates.
type Entry struct {
	Task      domain.Task   `json:"task"`
	Date      calendar.Date `json:"date"`
	Completed bool          `json:"completed"`
	Note      string        `json:"note,omitempty"`
}

func newEntry(t *domain.Task, d calendar.Date) Entry {
	return Entry{
		Task:      t.Clone(),
		Date:      d,
		Completed: t.IsCompleted(d),
		Note:      t.Note(d),
	}
}

// DueOn returns an entry for every task with an occurrence on d, in input order.
// Completed occurrences are included and flagged.
func DueOn(tasks []domain.Task, d calendar.Date) []Entry {
	var out []Entry
	for i := range tasks {
		t := &tasks[i]
		if recurring.IsOccurrence(*t, d) {
			out = append(out, newEntry(t, d))
		}
	}
	return out
}

// RelevantDate returns the date a task is judged by in the main list:
// its deadline when one-off, today when recurring.
func RelevantDate(t domain.Task, today calendar.Date) calendar.Date {
	if t.Repetition.IsRecurring() {
		return today
	}
	return t.Deadline
}

// Options filters List.
type Options struct {
	Status   domain.StatusFilter
	Priority domain.PriorityFilter
}

// List returns the main task list: sorted by deadline, with the status filter
// evaluated on each task's relevant date and the priority filter on its indicator.
func List(tasks []domain.Task, today calendar.Date, opts Options) []Entry {
	sorted := make([]*domain.Task, 0, len(tasks))
	for i := range tasks {
		sorted = append(sorted, &tasks[i])
	}
	slices.SortStableFunc(sorted, func(a, b *domain.Task) int {
		return a.Deadline.Compare(b.Deadline)
	})

	out := make([]Entry, 0, len(sorted))
	for _, t := range sorted {
		e := newEntry(t, RelevantDate(*t, today))

		switch opts.Status {
		case domain.StatusActive:
			if e.Completed {
				continue
			}
		case domain.StatusCompleted:
			if !e.Completed {
				continue
			}
		}

		if !opts.Priority.Matches(t.Indicator()) {
			continue
		}
		out = append(out, e)
	}
	return out
}
