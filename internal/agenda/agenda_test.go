package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func task(id, deadline string, rule domain.Repetition, prio ...domain.Priority) domain.Task {
	return domain.Task{
		ID:         id,
		Text:       "task " + id,
		Deadline:   d(deadline),
		Priority:   domain.NewPrioritySet(prio...),
		Repetition: rule,
	}
}

func entryIDs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Task.ID
	}
	return out
}

func TestDueOn(t *testing.T) {
	monthly := task("monthly", "2024-01-31", domain.Monthly())
	monthly.SetCompleted(d("2024-02-29"), true)
	monthly.SetNote(d("2024-02-29"), "paid")

	tasks := []domain.Task{
		task("once", "2024-02-29", domain.NoRepetition()),
		task("other", "2024-02-28", domain.NoRepetition()),
		monthly,
		task("custom", "2024-02-01", domain.Custom(time.Thursday)),
		task("future", "2024-03-01", domain.Daily()),
	}

	got := DueOn(tasks, d("2024-02-29"))

	require.Equal(t, []string{"once", "monthly", "custom"}, entryIDs(got))
	assert.False(t, got[0].Completed)
	assert.True(t, got[1].Completed)
	assert.Equal(t, "paid", got[1].Note)
	assert.Equal(t, "2024-02-29", got[2].Date.Key())
}

func TestRelevantDate(t *testing.T) {
	today := d("2024-06-15")

	assert.Equal(t, d("2024-06-01"), RelevantDate(task("a", "2024-06-01", domain.NoRepetition()), today))
	assert.Equal(t, today, RelevantDate(task("b", "2024-06-01", domain.Weekly()), today))
}

func TestList(t *testing.T) {
	today := d("2024-06-15")

	doneOnce := task("done-once", "2024-06-01", domain.NoRepetition(), domain.PriorityImportant)
	doneOnce.SetCompleted(doneOnce.Deadline, true)

	dailyDoneToday := task("daily-today", "2024-05-01", domain.Daily(), domain.PriorityUrgent)
	dailyDoneToday.SetCompleted(today, true)

	dailyDoneYesterday := task("daily-yesterday", "2024-05-15", domain.Daily())
	dailyDoneYesterday.SetCompleted(today.AddDays(-1), true)

	both := task("both", "2024-07-01", domain.NoRepetition(), domain.PriorityImportant, domain.PriorityUrgent)

	tasks := []domain.Task{both, doneOnce, dailyDoneYesterday, dailyDoneToday}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"all sorted by deadline", Options{}, []string{"daily-today", "daily-yesterday", "done-once", "both"}},
		{"active", Options{Status: domain.StatusActive}, []string{"daily-yesterday", "both"}},
		{"completed", Options{Status: domain.StatusCompleted}, []string{"daily-today", "done-once"}},
		{"important excludes combined", Options{Priority: domain.PriorityFilterImportant}, []string{"done-once"}},
		{"combined", Options{Priority: domain.PriorityFilterCombined}, []string{"both"}},
		{"none", Options{Priority: domain.PriorityFilterNone}, []string{"daily-yesterday"}},
		{"completed urgent", Options{Status: domain.StatusCompleted, Priority: domain.PriorityFilterUrgent}, []string{"daily-today"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entryIDs(List(tasks, today, tt.opts)))
		})
	}
}

func TestList_RelevantDateOnEntry(t *testing.T) {
	today := d("2024-06-15")
	tk := task("w", "2024-06-01", domain.Weekly())
	tk.SetNote(today, "today's note")

	got := List([]domain.Task{tk}, today, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, today, got[0].Date)
	assert.Equal(t, "today's note", got[0].Note)
}

func TestList_DoesNotReorderInput(t *testing.T) {
	tasks := []domain.Task{task("b", "2024-06-10", domain.NoRepetition()), task("a", "2024-06-01", domain.NoRepetition())}

	List(tasks, d("2024-06-15"), Options{})

	assert.Equal(t, "b", tasks[0].ID)
}
