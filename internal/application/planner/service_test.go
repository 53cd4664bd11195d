package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsennaibaho/Tugas-IMK/internal/agenda"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	listErr error
}

func newMemRepo(tasks ...domain.Task) *memRepo {
	r := &memRepo{tasks: make(map[string]domain.Task)}
	for _, t := range tasks {
		r.tasks[t.ID] = t.Clone()
	}
	return r
}

func (r *memRepo) ListTasks(ctx context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Task, 0, len(r.tasks))
	for _, id := range slices.Sorted(maps.Keys(r.tasks)) {
		t := r.tasks[id]
		out = append(out, t.Clone())
	}
	return out, nil
}

func (r *memRepo) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (r *memRepo) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; ok {
		return nil, domain.ErrTaskExists
	}
	r.tasks[task.ID] = task.Clone()
	c := task.Clone()
	return &c, nil
}

func (r *memRepo) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = task.Clone()
	c := task.Clone()
	return &c, nil
}

func (r *memRepo) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// fixedNow is 2024-06-15 10:00 UTC, a Saturday.
var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func newTestService(repo Repository) *Service {
	return NewService(repo, Config{
		Now:    func() time.Time { return fixedNow },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func seed(id, deadline string, rule domain.Repetition, prio ...domain.Priority) domain.Task {
	return domain.Task{
		ID:         id,
		Text:       "task " + id,
		Deadline:   d(deadline),
		Priority:   domain.NewPrioritySet(prio...),
		Repetition: rule,
	}
}

func TestAddTask(t *testing.T) {
	ctx := context.Background()

	t.Run("creates task with v7 id and trimmed text", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo)

		task, err := svc.AddTask(ctx, TaskInput{
			Text:       "  Pay rent  ",
			Deadline:   d("2024-06-30"),
			Priority:   []domain.Priority{domain.PriorityImportant, domain.PriorityImportant},
			Repetition: domain.Monthly(),
		})
		require.NoError(t, err)

		assert.Len(t, task.ID, 36)
		assert.Equal(t, "7", task.ID[14:15], "expected a UUIDv7")
		assert.Equal(t, "Pay rent", task.Text)
		assert.Equal(t, domain.PrioritySet{domain.PriorityImportant}, task.Priority)

		stored, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Text, stored.Text)
	})

	t.Run("defaults missing repetition to NONE", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		task, err := svc.AddTask(ctx, TaskInput{Text: "x", Deadline: d("2024-06-15")})
		require.NoError(t, err)
		assert.Equal(t, domain.RepetitionNone, task.Repetition.Type)
	})

	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{"empty text", TaskInput{Text: "   ", Deadline: d("2024-06-20")}, domain.ErrTextRequired},
		{"long text", TaskInput{Text: strings.Repeat("a", domain.MaxTextLength+1), Deadline: d("2024-06-20")}, domain.ErrTextTooLong},
		{"missing deadline", TaskInput{Text: "x"}, domain.ErrDeadlineRequired},
		{"past deadline", TaskInput{Text: "x", Deadline: d("2024-06-14")}, domain.ErrDeadlineInPast},
		{"bad priority", TaskInput{Text: "x", Deadline: d("2024-06-20"), Priority: []domain.Priority{"LOW"}}, domain.ErrInvalidPriority},
		{"bad rule", TaskInput{Text: "x", Deadline: d("2024-06-20"), Repetition: domain.Repetition{Type: "YEARLY"}}, domain.ErrInvalidRepetition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemRepo())
			_, err := svc.AddTask(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()

	overdue := seed("a", "2024-06-01", domain.Weekly())
	overdue.SetCompleted(d("2024-06-08"), true)
	overdue.SetNote(d("2024-06-08"), "old")

	t.Run("keeps unchanged past deadline and completions", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		got, err := svc.UpdateTask(ctx, "a", TaskInput{
			Text:       "renamed",
			Deadline:   d("2024-06-01"),
			Repetition: domain.Weekly(),
		}, d("2024-06-15"), "today")
		require.NoError(t, err)

		assert.Equal(t, "renamed", got.Text)
		assert.True(t, got.IsCompleted(d("2024-06-08")))
		assert.Equal(t, "old", got.Note(d("2024-06-08")))
		assert.Equal(t, "today", got.Note(d("2024-06-15")))
	})

	t.Run("rescheduling drops entries on former occurrences", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		// 2024-06-20 is a Thursday, so the Saturday entries no longer apply.
		got, err := svc.UpdateTask(ctx, "a", TaskInput{
			Text:       "moved",
			Deadline:   d("2024-06-20"),
			Repetition: domain.Weekly(),
		}, calendar.Date{}, "")
		require.NoError(t, err)

		assert.Empty(t, got.Completions)
		assert.Empty(t, got.Notes)

		stored, err := svc.GetTask(ctx, "a")
		require.NoError(t, err)
		assert.False(t, stored.IsCompleted(d("2024-06-08")))
	})

	t.Run("widening the rule keeps entries that still occur", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		got, err := svc.UpdateTask(ctx, "a", TaskInput{Text: "x", Deadline: d("2024-06-01"), Repetition: domain.Daily()}, calendar.Date{}, "")
		require.NoError(t, err)
		assert.True(t, got.IsCompleted(d("2024-06-08")))
		assert.Equal(t, "old", got.Note(d("2024-06-08")))
	})

	t.Run("blank note removes it", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		got, err := svc.UpdateTask(ctx, "a", TaskInput{Text: "x", Deadline: d("2024-06-01"), Repetition: domain.Weekly()}, d("2024-06-08"), "  ")
		require.NoError(t, err)
		assert.Empty(t, got.Note(d("2024-06-08")))
	})

	t.Run("moving deadline into the past is rejected", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		_, err := svc.UpdateTask(ctx, "a", TaskInput{Text: "x", Deadline: d("2024-06-02")}, calendar.Date{}, "")
		assert.True(t, errors.Is(err, domain.ErrDeadlineInPast))
	})

	t.Run("note on a non-occurrence is rejected", func(t *testing.T) {
		svc := newTestService(newMemRepo(overdue))

		_, err := svc.UpdateTask(ctx, "a", TaskInput{Text: "x", Deadline: d("2024-06-01"), Repetition: domain.Weekly()}, d("2024-06-09"), "nope")
		assert.True(t, errors.Is(err, domain.ErrNotAnOccurrence))
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		_, err := svc.UpdateTask(ctx, "missing", TaskInput{Text: "x", Deadline: d("2024-06-20")}, calendar.Date{}, "")
		assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
	})
}

func TestToggleCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(seed("a", "2024-06-01", domain.Weekly()))
	svc := newTestService(repo)

	got, err := svc.ToggleCompletion(ctx, "a", d("2024-06-08"))
	require.NoError(t, err)
	assert.True(t, got.IsCompleted(d("2024-06-08")))

	got, err = svc.ToggleCompletion(ctx, "a", d("2024-06-08"))
	require.NoError(t, err)
	assert.False(t, got.IsCompleted(d("2024-06-08")))
	_, has := got.Completions["2024-06-08"]
	assert.False(t, has, "un-toggle must remove the key")

	_, err = svc.ToggleCompletion(ctx, "a", d("2024-06-09"))
	assert.True(t, errors.Is(err, domain.ErrNotAnOccurrence))

	_, err = svc.ToggleCompletion(ctx, "a", d("2024-05-25"))
	assert.True(t, errors.Is(err, domain.ErrNotAnOccurrence), "dates before the anchor are not occurrences")
}

func TestSetNote(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo(seed("a", "2024-06-20", domain.NoRepetition())))

	got, err := svc.SetNote(ctx, "a", d("2024-06-20"), "bring laptop")
	require.NoError(t, err)
	assert.Equal(t, "bring laptop", got.Note(d("2024-06-20")))

	_, err = svc.SetNote(ctx, "a", d("2024-06-21"), "wrong day")
	assert.True(t, errors.Is(err, domain.ErrNotAnOccurrence))

	got, err = svc.SetNote(ctx, "a", d("2024-06-20"), "")
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo(seed("a", "2024-06-20", domain.NoRepetition())))

	require.NoError(t, svc.DeleteTask(ctx, "a"))

	err := svc.DeleteTask(ctx, "a")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	_, err = svc.GetTask(ctx, "a")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
}

func TestCalendarIndicators(t *testing.T) {
	ctx := context.Background()

	done := seed("b", "2024-06-20", domain.NoRepetition(), domain.PriorityUrgent)
	done.SetCompleted(done.Deadline, true)

	repo := newMemRepo(
		seed("a", "2024-06-20", domain.NoRepetition(), domain.PriorityImportant),
		done,
		seed("c", "2024-06-01", domain.Monthly()),
		seed("d", "2024-06-20", domain.Repetition{Type: "YEARLY"}),
	)
	svc := newTestService(repo)

	m, err := svc.CalendarIndicators(ctx)
	require.NoError(t, err)

	assert.Equal(t, []domain.Indicator{domain.IndicatorImportant}, m.On(d("2024-06-20")))
	assert.Equal(t, []domain.Indicator{domain.IndicatorNone}, m.On(d("2025-06-01")), "horizon is inclusive")
	assert.Nil(t, m.On(d("2025-07-01")), "beyond the one-year horizon")

	month, err := svc.CalendarMonth(ctx, 2024, time.July)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-01"}, month.Dates())
}

func TestReads_PropagateRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.listErr = errors.New("disk on fire")
	svc := newTestService(repo)

	_, err := svc.CalendarIndicators(ctx)
	assert.ErrorIs(t, err, repo.listErr)
	_, err = svc.Dashboard(ctx)
	assert.ErrorIs(t, err, repo.listErr)
	_, err = svc.DueOn(ctx, d("2024-06-15"))
	assert.ErrorIs(t, err, repo.listErr)
	_, err = svc.ListTasks(ctx, agenda.Options{})
	assert.ErrorIs(t, err, repo.listErr)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo(
		seed("late", "2024-06-10", domain.NoRepetition()),
		seed("soon", "2024-06-16", domain.NoRepetition()),
		seed("daily", "2024-06-01", domain.Daily()),
	))

	got, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, got.Overdue, 1)
	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, "late", got.Overdue[0].ID)
	assert.Equal(t, "soon", got.Upcoming[0].ID)
}

func TestDueOnAndListTasks(t *testing.T) {
	ctx := context.Background()
	daily := seed("daily", "2024-06-01", domain.Daily())
	daily.SetCompleted(d("2024-06-15"), true)
	svc := newTestService(newMemRepo(daily, seed("once", "2024-06-16", domain.NoRepetition())))

	due, err := svc.DueOn(ctx, d("2024-06-15"))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].Completed)

	_, err = svc.DueOn(ctx, calendar.Date{})
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	active, err := svc.ListTasks(ctx, agenda.Options{Status: domain.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "once", active[0].Task.ID)
}

func TestExportICS(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo(seed("a", "2024-01-31", domain.Monthly())))

	out, err := svc.ExportICS(ctx, "a")
	require.NoError(t, err)
	assert.Contains(t, out, "RRULE:FREQ=MONTHLY;BYMONTHDAY=28,29,30,31;BYSETPOS=-1")
	assert.Contains(t, out, "DTSTAMP:20240615T100000Z")

	_, err = svc.ExportICS(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
