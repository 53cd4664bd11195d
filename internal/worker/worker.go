// Package worker refreshes the overdue/upcoming dashboard in the background
// and hands non-empty results to a notification sink.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/dashboard"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// Source computes the current dashboard. *planner.Service satisfies it.
type Source interface {
	Dashboard(ctx context.Context) (dashboard.Dashboard, error)
}

// Notification is one non-empty dashboard refresh.
type Notification struct {
	Overdue  []domain.Task
	Upcoming []domain.Task
	// Welcome is set on the first notification a Notifier emits.
	Welcome bool
	At      time.Time
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogSink writes notifications to a slog logger.
type LogSink struct {
	Logger *slog.Logger
}

// Notify logs n at info level.
func (s LogSink) Notify(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	msg := "Task reminders"
	if n.Welcome {
		msg = "Welcome back: task reminders"
	}
	logger.InfoContext(ctx, msg, "overdue", len(n.Overdue), "upcoming", len(n.Upcoming))
	for _, t := range n.Overdue {
		logger.InfoContext(ctx, "Overdue task", "task_id", t.ID, "text", t.Text, "deadline", t.Deadline.Key())
	}
	for _, t := range n.Upcoming {
		logger.InfoContext(ctx, "Upcoming task", "task_id", t.ID, "text", t.Text, "deadline", t.Deadline.Key())
	}
	return nil
}

// Notifier recomputes the dashboard on a ticker and on change events.
type Notifier struct {
	source           Source
	sink             Sink
	interval         time.Duration
	operationTimeout time.Duration
	changes          <-chan struct{}
	now              func() time.Time

	mu       sync.Mutex
	welcomed bool
}

// Option is a functional option for configuring Notifier.
type Option func(*Notifier)

// WithInterval sets how often the dashboard is refreshed.
func WithInterval(d time.Duration) Option {
	return func(n *Notifier) {
		n.interval = d
	}
}

// WithChanges triggers an extra refresh whenever ch receives.
func WithChanges(ch <-chan struct{}) Option {
	return func(n *Notifier) {
		n.changes = ch
	}
}

// WithSink sets where notifications go. Defaults to LogSink with slog.Default().
func WithSink(s Sink) Option {
	return func(n *Notifier) {
		n.sink = s
	}
}

// WithClock sets the time source stamped on notifications.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// WithOperationTimeout bounds a single refresh.
func WithOperationTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		n.operationTimeout = d
	}
}

// New creates a new Notifier over source with the given options.
func New(source Source, opts ...Option) *Notifier {
	n := &Notifier{
		source:           source,
		sink:             LogSink{},
		interval:         15 * time.Minute, // Default: refresh every 15 minutes
		operationTimeout: 30 * time.Second,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Start refreshes once immediately, then on every tick and change event.
// Runs until ctx is cancelled and returns nil.
func (n *Notifier) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Notifier started", "interval", n.interval, "watching_changes", n.changes != nil)

	n.refresh(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	changes := n.changes
	for {
		select {
		case <-ticker.C:
			n.refresh(ctx)
		case _, ok := <-changes:
			if !ok {
				// Watcher gone: keep ticking.
				changes = nil
				continue
			}
			n.refresh(ctx)
		case <-ctx.Done():
			slog.InfoContext(ctx, "Notifier stopped")
			return nil
		}
	}
}

func (n *Notifier) refresh(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, n.operationTimeout)
	defer cancel()
	if _, err := n.RunOnce(opCtx); err != nil {
		slog.ErrorContext(opCtx, "Error refreshing dashboard", "error", err)
	}
}

// RunOnce executes a single refresh cycle.
// Returns true if a notification was emitted, false if the dashboard was empty.
func (n *Notifier) RunOnce(ctx context.Context) (bool, error) {
	d, err := n.source.Dashboard(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to compute dashboard: %w", err)
	}
	if d.Empty() {
		return false, nil
	}

	n.mu.Lock()
	welcome := !n.welcomed
	n.welcomed = true
	n.mu.Unlock()

	note := Notification{
		Overdue:  d.Overdue,
		Upcoming: d.Upcoming,
		Welcome:  welcome,
		At:       n.now(),
	}
	if err := n.sink.Notify(ctx, note); err != nil {
		return false, fmt.Errorf("failed to deliver notification: %w", err)
	}
	return true, nil
}
