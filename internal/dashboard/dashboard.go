// Package dashboard selects the overdue and upcoming one-off tasks shown in
// notifications.
//
// Recurring tasks never appear on the dashboard.
package dashboard

import (
	"slices"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// UpcomingWindow is how far ahead of now a deadline counts as upcoming.
const UpcomingWindow = 48 * time.Hour

// Dashboard holds the two disjoint task lists, each sorted by deadline.
type Dashboard struct {
	Overdue  []domain.Task `json:"overdue"`
	Upcoming []domain.Task `json:"upcoming"`
}

// Empty reports whether neither list has a task.
func (d Dashboard) Empty() bool {
	return len(d.Overdue) == 0 && len(d.Upcoming) == 0
}

// Count returns the number of tasks across both lists.
func (d Dashboard) Count() int {
	return len(d.Overdue) + len(d.Upcoming)
}

// Select computes both lists from the same snapshot.
func Select(tasks []domain.Task, now time.Time) Dashboard {
	return Dashboard{
		Overdue:  Overdue(tasks, now),
		Upcoming: Upcoming(tasks, now),
	}
}

// Overdue returns one-off tasks whose deadline is before today and whose
// deadline occurrence is not completed.
func Overdue(tasks []domain.Task, now time.Time) []domain.Task {
	today := calendar.Today(now)
	return selectTasks(tasks, func(t *domain.Task) bool {
		return t.Deadline.Before(today)
	})
}

// Upcoming returns one-off tasks whose deadline ends after now and no later
// than UpcomingWindow from now, and that are not completed.
// A deadline ends at 23:59:59 in now's location.
func Upcoming(tasks []domain.Task, now time.Time) []domain.Task {
	limit := now.Add(UpcomingWindow)
	return selectTasks(tasks, func(t *domain.Task) bool {
		end := t.Deadline.EndOfDay(now.Location())
		return end.After(now) && !end.After(limit)
	})
}

func selectTasks(tasks []domain.Task, keep func(*domain.Task) bool) []domain.Task {
	var out []domain.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Repetition.Kind() != domain.RepetitionNone || t.Deadline.IsZero() {
			continue
		}
		if t.IsCompleted(t.Deadline) || !keep(t) {
			continue
		}
		out = append(out, t.Clone())
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		return a.Deadline.Compare(b.Deadline)
	})
	return out
}
