package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
)

// Task is a personal task with a single anchor deadline and an optional
// recurrence rule.
//
// Deadline is the anchor date: the sole due date of a one-off task and the
// first candidate date of a recurring one. Completions and Notes are keyed by
// occurrence date (YYYY-MM-DD), so each occurrence of a recurring task is
// completed and annotated independently.
type Task struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Deadline calendar.Date `json:"deadline"`
	Priority PrioritySet   `json:"priority,omitempty"`

	Repetition Repetition `json:"repetition"`

	Completions map[string]bool   `json:"completions,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// Validate checks the invariants the engine relies on.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: empty task ID", ErrInvalidID)
	}
	if _, err := NewText(t.Text); err != nil {
		return err
	}
	if t.Deadline.IsZero() {
		return ErrDeadlineRequired
	}
	for _, p := range t.Priority {
		if _, err := ParsePriority(string(p)); err != nil {
			return err
		}
	}
	return t.Repetition.Validate()
}

// Indicator returns the calendar classification of every occurrence of t.
func (t *Task) Indicator() Indicator {
	return ClassifyIndicator(t.Priority)
}

// IsCompleted reports whether the occurrence on d is marked done.
func (t *Task) IsCompleted(d calendar.Date) bool {
	return t.Completions[d.Key()]
}

// Note returns the note attached to the occurrence on d, if any.
func (t *Task) Note(d calendar.Date) string {
	return t.Notes[d.Key()]
}

// SetCompleted marks or clears the completion of the occurrence on d.
// Clearing removes the key so completion maps only hold true values.
func (t *Task) SetCompleted(d calendar.Date, done bool) {
	if !done {
		delete(t.Completions, d.Key())
		return
	}
	if t.Completions == nil {
		t.Completions = make(map[string]bool)
	}
	t.Completions[d.Key()] = true
}

// SetNote attaches a note to the occurrence on d. A blank note removes it.
func (t *Task) SetNote(d calendar.Date, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		delete(t.Notes, d.Key())
		return
	}
	if t.Notes == nil {
		t.Notes = make(map[string]string)
	}
	t.Notes[d.Key()] = note
}

// Clone returns a deep copy of t, so a snapshot cannot observe later mutations.
func (t *Task) Clone() Task {
	c := *t
	c.Priority = slices.Clone(t.Priority)
	c.Completions = maps.Clone(t.Completions)
	c.Notes = maps.Clone(t.Notes)
	return c
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
