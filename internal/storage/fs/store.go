// Package fs stores each task as one JSON file in a directory.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

const fileExt = ".json"

// Store is a filesystem-based implementation of planner.Repository.
type Store struct {
	baseDir string
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewStore creates a new filesystem store rooted at baseDir.
// A nil logger uses slog.Default().
func NewStore(baseDir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{baseDir: baseDir, logger: logger}, nil
}

// Dir returns the directory holding the task files.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) getFilePath(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return filepath.Join(s.baseDir, id+fileExt), nil
}

func (s *Store) write(path string, task *domain.Task) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func readTask(path string) (*domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// CreateTask writes a new task file.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.getFilePath(task.ID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskExists, task.ID)
	}

	if err := s.write(path, task); err != nil {
		return nil, err
	}
	c := task.Clone()
	return &c, nil
}

// FindTaskByID reads a task file.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.getFilePath(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	task, err := readTask(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to read task %s: %w", id, err)
	}
	return task, nil
}

// UpdateTask atomically replaces an existing task file.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.getFilePath(task.ID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.ID)
	}

	if err := s.write(path, task); err != nil {
		return nil, err
	}
	c := task.Clone()
	return &c, nil
}

// DeleteTask removes a task file.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.getFilePath(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// ListTasks scans the directory for task files and loads them in parallel.
// Unreadable or malformed files are logged and skipped.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var mu sync.Mutex
	var tasks []domain.Task
	var wg sync.WaitGroup

	// Bounded to avoid "too many open files" on large directories.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(filename string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			task, err := readTask(filepath.Join(s.baseDir, filename))
			if err != nil {
				s.logger.WarnContext(ctx, "skipping unreadable task file", "file", filename, "error", err)
				return
			}

			mu.Lock()
			tasks = append(tasks, *task)
			mu.Unlock()
		}(entry.Name())
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b domain.Task) int {
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}
