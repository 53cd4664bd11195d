// Package repository implements planner.Repository over database/sql for
// SQLite and PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// Dialect selects the SQL flavour of the connected database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements planner.Repository using a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewStore creates a new SQL-backed store. The schema must already be migrated.
// A nil logger uses slog.Default.
func NewStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
// This should be called when shutting down the application.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type taskRow struct {
	id       string
	text     string
	deadline string
	priority string
	repType  string
	repDays  int64
}

func (r taskRow) toDomain() (domain.Task, error) {
	deadline, err := calendar.Parse(r.deadline)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", r.id, err)
	}
	var prio domain.PrioritySet
	if err := json.Unmarshal([]byte(r.priority), &prio); err != nil {
		return domain.Task{}, fmt.Errorf("task %s: invalid priority column: %w", r.id, err)
	}
	if r.repDays < 0 || r.repDays > 0x7f {
		return domain.Task{}, fmt.Errorf("task %s: %w: days bitmask %d", r.id, domain.ErrInvalidWeekday, r.repDays)
	}
	return domain.Task{
		ID:       r.id,
		Text:     r.text,
		Deadline: deadline,
		Priority: prio,
		Repetition: domain.Repetition{
			Type: domain.RepetitionType(r.repType),
			Days: domain.WeekdaySet(r.repDays),
		},
	}, nil
}

func fromDomain(t *domain.Task) (taskRow, error) {
	prio := t.Priority
	if prio == nil {
		prio = domain.PrioritySet{}
	}
	data, err := json.Marshal(prio)
	if err != nil {
		return taskRow{}, fmt.Errorf("failed to marshal priority: %w", err)
	}
	return taskRow{
		id:       t.ID,
		text:     t.Text,
		deadline: t.Deadline.Key(),
		priority: string(data),
		repType:  string(t.Repetition.Kind()),
		repDays:  int64(t.Repetition.Days),
	}, nil
}

const selectTasks = `SELECT id, text, deadline, priority, repetition_type, repetition_days FROM tasks`

func scanTask(scan func(dest ...any) error) (taskRow, error) {
	var r taskRow
	err := scan(&r.id, &r.text, &r.deadline, &r.priority, &r.repType, &r.repDays)
	return r, err
}

// CreateTask inserts a task with its completions and notes.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	row, err := fromDomain(task)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO tasks (id, text, deadline, priority, repetition_type, repetition_days) VALUES (?, ?, ?, ?, ?, ?)`),
		row.id, row.text, row.deadline, row.priority, row.repType, row.repDays)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskExists, task.ID)
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.writeChildren(ctx, tx, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c := task.Clone()
	return &c, nil
}

// UpdateTask replaces a task row and all of its completions and notes.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	row, err := fromDomain(task)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(
		`UPDATE tasks SET text = ?, deadline = ?, priority = ?, repetition_type = ?, repetition_days = ? WHERE id = ?`),
		row.text, row.deadline, row.priority, row.repType, row.repDays, row.id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.ID)
	}

	if err := s.deleteChildren(ctx, tx, task.ID); err != nil {
		return nil, err
	}
	if err := s.writeChildren(ctx, tx, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c := task.Clone()
	return &c, nil
}

// DeleteTask removes a task and its completions and notes.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first: SQLite only enforces ON DELETE CASCADE with foreign_keys enabled.
	if err := s.deleteChildren(ctx, tx, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	return tx.Commit()
}

func (s *Store) deleteChildren(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, s.rebind(`DELETE FROM task_completions WHERE task_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	if _, err := q.ExecContext(ctx, s.rebind(`DELETE FROM task_notes WHERE task_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete notes: %w", err)
	}
	return nil
}

func (s *Store) writeChildren(ctx context.Context, q querier, task *domain.Task) error {
	for date, done := range task.Completions {
		if !done {
			continue
		}
		if _, err := q.ExecContext(ctx, s.rebind(`INSERT INTO task_completions (task_id, date) VALUES (?, ?)`), task.ID, date); err != nil {
			return fmt.Errorf("failed to insert completion: %w", err)
		}
	}
	for date, note := range task.Notes {
		if _, err := q.ExecContext(ctx, s.rebind(`INSERT INTO task_notes (task_id, date, note) VALUES (?, ?, ?)`), task.ID, date, note); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
	}
	return nil
}

// FindTaskByID retrieves a task with its completions and notes.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	row, err := scanTask(s.db.QueryRowContext(ctx, s.rebind(selectTasks+` WHERE id = ?`), id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.Task{task.ID: &task}
	if err := s.loadCompletions(ctx, byID, ` WHERE task_id = ?`, id); err != nil {
		return nil, err
	}
	if err := s.loadNotes(ctx, byID, ` WHERE task_id = ?`, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns every task ordered by ID.
// Rows that do not decode into a valid task are logged and skipped.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, selectTasks+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		row, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task, err := row.toDomain()
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed task row", "task_id", row.id, "error", err)
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	byID := make(map[string]*domain.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	if err := s.loadCompletions(ctx, byID, ""); err != nil {
		return nil, err
	}
	if err := s.loadNotes(ctx, byID, ""); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) loadCompletions(ctx context.Context, byID map[string]*domain.Task, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT task_id, date FROM task_completions`+where), args...)
	if err != nil {
		return fmt.Errorf("failed to load completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, date string
		if err := rows.Scan(&id, &date); err != nil {
			return fmt.Errorf("failed to scan completion: %w", err)
		}
		if t, ok := byID[id]; ok {
			if t.Completions == nil {
				t.Completions = make(map[string]bool)
			}
			t.Completions[date] = true
		}
	}
	return rows.Err()
}

func (s *Store) loadNotes(ctx context.Context, byID map[string]*domain.Task, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT task_id, date, note FROM task_notes`+where), args...)
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, date, note string
		if err := rows.Scan(&id, &date, &note); err != nil {
			return fmt.Errorf("failed to scan note: %w", err)
		}
		if t, ok := byID[id]; ok {
			if t.Notes == nil {
				t.Notes = make(map[string]string)
			}
			t.Notes[date] = note
		}
	}
	return rows.Err()
}
