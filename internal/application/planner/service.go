// Package planner is the application service over the recurrence engine.
// Every read loads a fresh snapshot from the repository and computes its
// view from scratch; nothing is cached between calls.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/arsennaibaho/Tugas-IMK/internal/agenda"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/dashboard"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/ics"
	"github.com/arsennaibaho/Tugas-IMK/internal/indicator"
	"github.com/arsennaibaho/Tugas-IMK/internal/recurring"
)

const instrumentationName = "github.com/arsennaibaho/Tugas-IMK/internal/application/planner"

// Config holds configuration for the Service.
type Config struct {
	// Now returns the current instant. Its location decides which calendar
	// day is today. Defaults to time.Now.
	Now func() time.Time

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// TaskInput is the user-editable part of a task.
type TaskInput struct {
	Text       string
	Deadline   calendar.Date
	Priority   []domain.Priority
	Repetition domain.Repetition
}

// Service provides the planner use cases.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger

	tracer  trace.Tracer
	skipped metric.Int64Counter
}

// NewService creates a new planner service. Zero config values get defaults.
func NewService(repo Repository, config Config) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Service{
		repo:   repo,
		now:    config.Now,
		logger: config.Logger,
		tracer: otel.Tracer(instrumentationName),
	}

	skipped, err := otel.Meter(instrumentationName).Int64Counter(
		"planner.indicator.skipped_tasks",
		metric.WithDescription("Tasks skipped during calendar aggregation because they could not be projected."),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		s.logger.Warn("failed to create skipped tasks counter", "error", err)
	}
	s.skipped = skipped

	return s
}

// Today returns the calendar date of the service clock.
func (s *Service) Today() calendar.Date {
	return calendar.Today(s.now())
}

// Horizon returns the last date the calendar projects to.
func (s *Service) Horizon() calendar.Date {
	return recurring.Horizon(s.now())
}

func (s *Service) snapshot(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "planner."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CalendarIndicators returns the indicator map from today's snapshot up to the horizon.
func (s *Service) CalendarIndicators(ctx context.Context) (_ indicator.Map, err error) {
	ctx, span := s.startSpan(ctx, "CalendarIndicators")
	defer func() { endSpan(span, err) }()

	tasks, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	horizon := recurring.Horizon(s.now())
	m := indicator.Build(tasks, horizon, indicator.WithSkipReporter(func(task domain.Task, err error) {
		s.logger.WarnContext(ctx, "skipping task in calendar aggregation",
			"task_id", task.ID, "error", err)
		if s.skipped != nil {
			s.skipped.Add(ctx, 1)
		}
	}))

	span.SetAttributes(
		attribute.Int("planner.tasks", len(tasks)),
		attribute.Int("planner.days", len(m)),
		attribute.String("planner.horizon", horizon.Key()),
	)
	return m, nil
}

// CalendarMonth returns the indicator entries for one calendar page.
func (s *Service) CalendarMonth(ctx context.Context, year int, month time.Month) (indicator.Map, error) {
	m, err := s.CalendarIndicators(ctx)
	if err != nil {
		return nil, err
	}
	return m.Month(year, month), nil
}

// Dashboard returns the overdue and upcoming one-off tasks.
func (s *Service) Dashboard(ctx context.Context) (_ dashboard.Dashboard, err error) {
	ctx, span := s.startSpan(ctx, "Dashboard")
	defer func() { endSpan(span, err) }()

	tasks, err := s.snapshot(ctx)
	if err != nil {
		return dashboard.Dashboard{}, err
	}

	d := dashboard.Select(tasks, s.now())
	span.SetAttributes(
		attribute.Int("planner.overdue", len(d.Overdue)),
		attribute.Int("planner.upcoming", len(d.Upcoming)),
	)
	return d, nil
}

// DueOn returns every task occurring on date, completed occurrences included.
func (s *Service) DueOn(ctx context.Context, date calendar.Date) (_ []agenda.Entry, err error) {
	ctx, span := s.startSpan(ctx, "DueOn", attribute.String("planner.date", date.Key()))
	defer func() { endSpan(span, err) }()

	if date.IsZero() {
		return nil, calendar.ErrInvalidDate
	}

	tasks, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agenda.DueOn(tasks, date), nil
}

// ListTasks returns the filtered main task list.
func (s *Service) ListTasks(ctx context.Context, opts agenda.Options) (_ []agenda.Entry, err error) {
	ctx, span := s.startSpan(ctx, "ListTasks",
		attribute.String("planner.status", string(opts.Status)),
		attribute.String("planner.priority", string(opts.Priority)),
	)
	defer func() { endSpan(span, err) }()

	tasks, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agenda.List(tasks, s.Today(), opts), nil
}

// GetTask retrieves a single task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	return s.repo.FindTaskByID(ctx, id)
}

// ExportICS renders a task as an iCalendar document.
func (s *Service) ExportICS(ctx context.Context, id string) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "ExportICS", attribute.String("planner.task_id", id))
	defer func() { endSpan(span, err) }()

	task, err := s.GetTask(ctx, id)
	if err != nil {
		return "", err
	}
	return ics.BuildTaskCalendar(*task, s.now())
}

// validate normalizes input into task fields.
// Deadlines before today are rejected unless the deadline is unchanged from previous.
func (s *Service) validate(input TaskInput, previous calendar.Date) (domain.Task, error) {
	text, err := domain.NewText(input.Text)
	if err != nil {
		return domain.Task{}, err
	}
	if input.Deadline.IsZero() {
		return domain.Task{}, domain.ErrDeadlineRequired
	}
	if input.Deadline.Before(s.Today()) && !input.Deadline.Equal(previous) {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrDeadlineInPast, input.Deadline)
	}

	prio := domain.NewPrioritySet(input.Priority...)
	for _, p := range prio {
		if _, err := domain.ParsePriority(string(p)); err != nil {
			return domain.Task{}, err
		}
	}

	rule := input.Repetition
	if rule.Type == "" {
		rule.Type = domain.RepetitionNone
	}
	if err := rule.Validate(); err != nil {
		return domain.Task{}, err
	}

	return domain.Task{
		Text:       text.String(),
		Deadline:   input.Deadline,
		Priority:   prio,
		Repetition: rule,
	}, nil
}

// AddTask validates input and stores a new task.
func (s *Service) AddTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	task, err := s.validate(input, calendar.Date{})
	if err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	task.ID = idObj.String()

	created, err := s.repo.CreateTask(ctx, &task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		"task_id", created.ID, "deadline", created.Deadline.Key(), "repetition", created.Repetition.Kind())
	return created, nil
}

// UpdateTask replaces the editable fields of a task and sets or clears the
// note on noteDate. A zero noteDate leaves notes untouched.
// Completions and notes survive only on dates that are still occurrences
// under the new deadline and repetition.
func (s *Service) UpdateTask(ctx context.Context, id string, input TaskInput, noteDate calendar.Date, note string) (*domain.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(input, current.Deadline)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	updated.Text = fields.Text
	updated.Deadline = fields.Deadline
	updated.Priority = fields.Priority
	updated.Repetition = fields.Repetition
	if dropped := pruneStale(&updated); dropped > 0 {
		s.logger.InfoContext(ctx, "dropped entries outside the new schedule", "task_id", id, "count", dropped)
	}

	if !noteDate.IsZero() {
		if err := setNote(&updated, noteDate, note); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.UpdateTask(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return saved, nil
}

// ToggleCompletion flips the completion of the occurrence on date.
func (s *Service) ToggleCompletion(ctx context.Context, id string, date calendar.Date) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !recurring.IsOccurrence(*task, date) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAnOccurrence, date)
	}

	task.SetCompleted(date, !task.IsCompleted(date))

	saved, err := s.repo.UpdateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.InfoContext(ctx, "task completion toggled",
		"task_id", saved.ID, "date", date.Key(), "completed", saved.IsCompleted(date))
	return saved, nil
}

// SetNote attaches a note to the occurrence on date. A blank note removes it.
func (s *Service) SetNote(ctx context.Context, id string, date calendar.Date, note string) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := setNote(task, date, note); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpdateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return saved, nil
}

// Blank notes only remove, so they are accepted on any date.
func setNote(task *domain.Task, date calendar.Date, note string) error {
	if strings.TrimSpace(note) != "" && !recurring.IsOccurrence(*task, date) {
		return fmt.Errorf("%w: %s", domain.ErrNotAnOccurrence, date)
	}
	task.SetNote(date, note)
	return nil
}

// pruneStale removes completions and notes keyed on dates that are not
// occurrences of task, and returns how many were removed.
func pruneStale(task *domain.Task) int {
	stale := func(key string) bool {
		d, err := calendar.Parse(key)
		return err != nil || !recurring.IsOccurrence(*task, d)
	}
	n := len(task.Completions) + len(task.Notes)
	maps.DeleteFunc(task.Completions, func(k string, _ bool) bool { return stale(k) })
	maps.DeleteFunc(task.Notes, func(k string, _ string) bool { return stale(k) })
	return n - len(task.Completions) - len(task.Notes)
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskNotFound
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "task deleted", "task_id", id)
	return nil
}
