// Package indicator aggregates task occurrences into per-day calendar
// indicator lists.
package indicator

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/recurring"
)

// Map holds, per YYYY-MM-DD key, one indicator for each uncompleted
// occurrence on that day. Within a day, indicators keep task input order.
type Map map[string][]domain.Indicator

// SkipReporter is called for each task that cannot be projected.
type SkipReporter func(task domain.Task, err error)

type options struct {
	onSkip SkipReporter
}

// Option configures Build.
type Option func(*options)

// WithSkipReporter sets the callback invoked for tasks skipped during aggregation.
func WithSkipReporter(fn SkipReporter) Option {
	return func(o *options) {
		o.onSkip = fn
	}
}

// Build projects every task over [deadline, horizon] and collects the
// indicators of its uncompleted occurrences.
//
// A task whose projection fails is skipped and reported; the rest of the
// aggregation proceeds. Tasks anchored after the horizon contribute nothing.
func Build(tasks []domain.Task, horizon calendar.Date, opts ...Option) Map {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	out := make(Map)
	for i := range tasks {
		task := &tasks[i]
		if !task.Deadline.IsZero() && task.Deadline.After(horizon) {
			continue
		}

		seq, err := recurring.Project(*task, task.Deadline, horizon)
		if err != nil {
			if o.onSkip != nil {
				o.onSkip(*task, err)
			}
			continue
		}

		ind := task.Indicator()
		for d := range seq {
			key := d.Key()
			if task.Completions[key] {
				continue
			}
			out[key] = append(out[key], ind)
		}
	}
	return out
}

// On returns the indicators for d, or nil when the day has none.
func (m Map) On(d calendar.Date) []domain.Indicator {
	return m[d.Key()]
}

// Month returns the entries that fall in the given calendar month.
func (m Map) Month(year int, month time.Month) Map {
	prefix := calendar.New(year, month, 1).Key()[:len("2006-01-")]
	out := make(Map)
	for k, v := range m {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// Dates returns the keys of m in ascending order.
func (m Map) Dates() []string {
	return slices.Sorted(maps.Keys(m))
}
