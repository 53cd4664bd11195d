package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

func oneOff(id, deadline string) domain.Task {
	return domain.Task{
		ID:         id,
		Text:       "task " + id,
		Deadline:   calendar.MustParse(deadline),
		Repetition: domain.NoRepetition(),
	}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSelect(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	done := oneOff("done", "2024-06-10")
	done.SetCompleted(done.Deadline, true)

	recurring := oneOff("daily", "2024-06-01")
	recurring.Repetition = domain.Daily()

	tasks := []domain.Task{
		oneOff("late2", "2024-06-14"),
		oneOff("late1", "2024-06-10"),
		done,
		recurring,
		oneOff("soon2", "2024-06-16"),
		oneOff("today", "2024-06-15"),
		// Ends 2024-06-17 23:59:59, after now+48h.
		oneOff("far", "2024-06-17"),
	}

	got := Select(tasks, now)

	assert.Equal(t, []string{"late1", "late2"}, ids(got.Overdue))
	assert.Equal(t, []string{"today", "soon2"}, ids(got.Upcoming))
	assert.Equal(t, 4, got.Count())
	assert.False(t, got.Empty())
}

func TestUpcoming_WindowBoundary(t *testing.T) {
	tasks := []domain.Task{oneOff("a", "2024-06-17")}

	// End of day 2024-06-17 is exactly now+48h.
	now := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, []string{"a"}, ids(Upcoming(tasks, now)))

	now = now.Add(-time.Second)
	assert.Empty(t, Upcoming(tasks, now))
}

func TestUpcoming_UsesNowLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	tasks := []domain.Task{oneOff("a", "2024-06-15")}

	// 2024-06-15 18:00 UTC is 2024-06-16 01:00 in Jakarta: the deadline day is over.
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	assert.Len(t, Upcoming(tasks, now), 1)
	assert.Empty(t, Upcoming(tasks, now.In(jakarta)))
	assert.Len(t, Overdue(tasks, now.In(jakarta)), 1)
}

func TestSelect_Disjoint(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	var tasks []domain.Task
	for i := -5; i <= 5; i++ {
		key := calendar.MustParse("2024-06-15").AddDays(i).Key()
		tasks = append(tasks, oneOff(key, key))
	}

	got := Select(tasks, now)

	seen := make(map[string]bool)
	for _, task := range got.Overdue {
		seen[task.ID] = true
	}
	for _, u := range got.Upcoming {
		assert.False(t, seen[u.ID], "task %s in both lists", u.ID)
	}
	assert.Len(t, got.Overdue, 5)
	assert.Equal(t, []string{"2024-06-15", "2024-06-16"}, ids(got.Upcoming))
}

func TestSelect_StableForEqualDeadlines(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	tasks := []domain.Task{oneOff("b", "2024-06-01"), oneOff("a", "2024-06-01"), oneOff("c", "2024-06-01")}

	assert.Equal(t, []string{"b", "a", "c"}, ids(Overdue(tasks, now)))
}

func TestSelect_ReturnsCopies(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	tasks := []domain.Task{oneOff("a", "2024-06-01")}

	got := Overdue(tasks, now)
	got[0].SetNote(got[0].Deadline, "changed")

	assert.Empty(t, tasks[0].Notes)
}

func TestSelect_UnsetRepetitionIsOneOff(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	late := oneOff("late", "2024-06-12")
	late.Repetition = domain.Repetition{}
	soon := oneOff("soon", "2024-06-16")
	soon.Repetition = domain.Repetition{}

	got := Select([]domain.Task{late, soon}, now)
	assert.Equal(t, []string{"late"}, ids(got.Overdue))
	assert.Equal(t, []string{"soon"}, ids(got.Upcoming))
}

func TestSelect_Empty(t *testing.T) {
	got := Select(nil, time.Now())
	assert.True(t, got.Empty())
	assert.Zero(t, got.Count())
}
