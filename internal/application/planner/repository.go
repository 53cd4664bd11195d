package planner

import (
	"context"

	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// Repository defines storage operations for planner tasks.
// Implementations return deep copies: callers own what they receive and
// later writes never show through a snapshot already handed out.
type Repository interface {
	// ListTasks returns every task ordered by ID.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// FindTaskByID retrieves a single task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	FindTaskByID(ctx context.Context, id string) (*domain.Task, error)

	// CreateTask stores a new task and returns it as persisted.
	// Returns domain.ErrTaskExists if the ID is already taken.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// UpdateTask replaces a stored task and returns it as persisted.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// DeleteTask removes a task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error
}
