// Package gcs stores each task as one JSON object in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

const objectExt = ".json"

// Store is a GCS-based implementation of planner.Repository.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewStore creates a new GCS store. Objects are named prefix + id + ".json".
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string, logger *slog.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		bucket: bucketName,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) object(id string) (*storage.ObjectHandle, error) {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return s.client.Bucket(s.bucket).Object(s.prefix + id + objectExt), nil
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// CreateTask writes a new task object. Creation is conditional on the object
// not existing, so concurrent creators cannot overwrite each other.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	obj, err := s.object(task.ID)
	if err != nil {
		return nil, err
	}

	_, err = obj.Attrs(ctx)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskExists, task.ID)
	}
	// Use errors.Is to handle wrapped errors from GCS client
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("failed to check object existence: %w", err)
	}

	if err := s.write(ctx, obj.If(storage.Conditions{DoesNotExist: true}), task); err != nil {
		return nil, err
	}
	c := task.Clone()
	return &c, nil
}

// FindTaskByID retrieves a task object.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	obj, err := s.object(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	return s.read(ctx, obj, id)
}

func (s *Store) read(ctx context.Context, obj *storage.ObjectHandle, id string) (*domain.Task, error) {
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	var task domain.Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}

// UpdateTask overwrites an existing task object.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	obj, err := s.object(task.ID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	attrs, err := obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check object existence: %w", err)
	}

	// Overwrite only the generation we checked.
	if err := s.write(ctx, obj.If(storage.Conditions{GenerationMatch: attrs.Generation}), task); err != nil {
		return nil, err
	}
	c := task.Clone()
	return &c, nil
}

// DeleteTask deletes a task object.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	obj, err := s.object(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ListTasks scans the bucket prefix for task objects and loads them in parallel.
// Unreadable objects are logged and skipped.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var objectNames []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		rest := strings.TrimPrefix(attrs.Name, s.prefix)
		if strings.HasSuffix(rest, objectExt) && !strings.Contains(rest, "/") {
			objectNames = append(objectNames, attrs.Name)
		}
	}

	var mu sync.Mutex
	var tasks []domain.Task
	var wg sync.WaitGroup

	// GCS handles 20+ concurrent requests well, but we stay conservative.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, name := range objectNames {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(objectName string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			task, err := s.read(ctx, s.client.Bucket(s.bucket).Object(objectName), objectName)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping unreadable task object", "object", objectName, "error", err)
				return
			}

			mu.Lock()
			tasks = append(tasks, *task)
			mu.Unlock()
		}(name)
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
