// Package compliance holds the behavioural suite every task repository runs.
package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

func newTask(t *testing.T, text string) *domain.Task {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &domain.Task{
		ID:         id.String(),
		Text:       text,
		Deadline:   calendar.MustParse("2024-01-31"),
		Priority:   domain.NewPrioritySet(domain.PriorityImportant),
		Repetition: domain.Monthly(),
	}
}

// RunRepositoryComplianceTest runs a standard set of tests against a Repository implementation.
// setup returns a fresh (clean) Repository and a cleanup func called after each subtest.
func RunRepositoryComplianceTest(t *testing.T, setup func() (planner.Repository, func())) {
	t.Run("CreateAndFindTask", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Pay rent")
		task.SetCompleted(calendar.MustParse("2024-02-29"), true)
		task.SetNote(calendar.MustParse("2024-02-29"), "paid, with receipt")

		created, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, task.ID, created.ID)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Text, fetched.Text)
		assert.Equal(t, task.Deadline, fetched.Deadline)
		assert.Equal(t, task.Priority, fetched.Priority)
		assert.Equal(t, task.Repetition, fetched.Repetition)
		assert.Equal(t, task.Completions, fetched.Completions)
		assert.Equal(t, task.Notes, fetched.Notes)
	})

	t.Run("CustomWeekdaysRoundTrip", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Gym")
		task.Priority = nil
		task.Repetition = domain.Custom(time.Monday, time.Wednesday, time.Friday)
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		empty := newTask(t, "Never")
		empty.Repetition = domain.Custom()
		_, err = repo.CreateTask(ctx, empty)
		require.NoError(t, err)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RepetitionCustom, fetched.Repetition.Type)
		assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, fetched.Repetition.Days.Days())
		assert.Empty(t, fetched.Priority)

		fetched, err = repo.FindTaskByID(ctx, empty.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RepetitionCustom, fetched.Repetition.Type)
		assert.True(t, fetched.Repetition.Days.Empty())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Once")
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		_, err = repo.CreateTask(ctx, task)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrTaskExists), "got %v", err)
	})

	t.Run("UpdateTask", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Draft")
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		task.Text = "Final"
		task.SetCompleted(calendar.MustParse("2024-03-31"), true)
		updated, err := repo.UpdateTask(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, "Final", updated.Text)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Final", fetched.Text)
		assert.True(t, fetched.IsCompleted(calendar.MustParse("2024-03-31")))

		task.SetCompleted(calendar.MustParse("2024-03-31"), false)
		_, err = repo.UpdateTask(ctx, task)
		require.NoError(t, err)

		fetched, err = repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Empty(t, fetched.Completions)
	})

	t.Run("UpdateNonExistentTask", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()

		_, err := repo.UpdateTask(context.Background(), newTask(t, "Ghost"))
		assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)
	})

	t.Run("ListTasksOrderedByID", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		var ids []string
		for _, text := range []string{"first", "second", "third"} {
			task := newTask(t, text)
			_, err := repo.CreateTask(ctx, task)
			require.NoError(t, err)
			ids = append(ids, task.ID)
		}

		tasks, err := repo.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		for i, task := range tasks {
			assert.Equal(t, ids[i], task.ID)
		}
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Snapshot")
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		fetched.SetCompleted(calendar.MustParse("2024-01-31"), true)

		again, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, again.IsCompleted(calendar.MustParse("2024-01-31")))
	})

	t.Run("DeleteTask", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		task := newTask(t, "Temporary")
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteTask(ctx, task.ID))

		_, err = repo.FindTaskByID(ctx, task.ID)
		assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)

		err = repo.DeleteTask(ctx, task.ID)
		assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)
	})

	t.Run("FindNonExistentTask", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()

		_, err := repo.FindTaskByID(context.Background(), uuid.NewString())
		assert.True(t, errors.Is(err, domain.ErrTaskNotFound), "got %v", err)
	})
}
