package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Priority is a priority flag on a task.
// Value object - immutable string enum.
type Priority string

const (
	PriorityImportant Priority = "IMPORTANT"
	PriorityUrgent    Priority = "URGENT"
)

// PrioritySet holds zero, one or both priority flags.
type PrioritySet []Priority

// NewPrioritySet builds a set from flags, dropping duplicates.
func NewPrioritySet(flags ...Priority) PrioritySet {
	set := make(PrioritySet, 0, len(flags))
	for _, p := range flags {
		if !slices.Contains(set, p) {
			set = append(set, p)
		}
	}
	return set
}

// Has reports whether p is in the set.
func (s PrioritySet) Has(p Priority) bool {
	return slices.Contains(s, p)
}

// Toggle returns a copy of the set with p added or removed.
func (s PrioritySet) Toggle(p Priority) PrioritySet {
	if s.Has(p) {
		out := make(PrioritySet, 0, len(s))
		for _, q := range s {
			if q != p {
				out = append(out, q)
			}
		}
		return out
	}
	return append(slices.Clone(s), p)
}

// RepetitionType is the recurrence rule of a task.
// Value object - immutable string enum.
type RepetitionType string

const (
	RepetitionNone    RepetitionType = "NONE"
	RepetitionDaily   RepetitionType = "DAILY"
	RepetitionWeekly  RepetitionType = "WEEKLY"
	RepetitionMonthly RepetitionType = "MONTHLY"
	RepetitionCustom  RepetitionType = "CUSTOM"
)

// WeekdaySet is a set of weekday indices (Sunday = 0 ... Saturday = 6).
// Encoded as a sorted JSON array of indices.
type WeekdaySet uint8

// NewWeekdaySet builds a set from weekdays. Indices outside 0-6 are ignored;
// use ParseWeekdays to validate raw input.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			s |= 1 << d
		}
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday && s&(1<<d) != 0
}

// Toggle returns the set with d added or removed.
func (s WeekdaySet) Toggle(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s ^ (1 << d)
}

// Empty reports whether no weekday is selected.
func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

// Days returns the selected weekdays in ascending order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// MarshalJSON encodes the set as a sorted array of weekday indices.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	idx := make([]int, 0, 7)
	for _, d := range s.Days() {
		idx = append(idx, int(d))
	}
	return json.Marshal(idx)
}

// UnmarshalJSON decodes an array of weekday indices. null decodes to the empty set.
func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var idx []int
	if err := json.Unmarshal(b, &idx); err != nil {
		return err
	}
	set, err := ParseWeekdays(idx)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Repetition is the recurrence rule of a task. Only CUSTOM carries Days.
type Repetition struct {
	Type RepetitionType `json:"type"`
	Days WeekdaySet     `json:"days,omitempty"`
}

// NoRepetition returns a one-off rule.
func NoRepetition() Repetition { return Repetition{Type: RepetitionNone} }

// Daily returns a rule occurring every day from the anchor.
func Daily() Repetition { return Repetition{Type: RepetitionDaily} }

// Weekly returns a rule occurring on the anchor's weekday.
func Weekly() Repetition { return Repetition{Type: RepetitionWeekly} }

// Monthly returns a rule occurring on the anchor's day of month.
func Monthly() Repetition { return Repetition{Type: RepetitionMonthly} }

// Custom returns a rule occurring on the given weekdays.
func Custom(days ...time.Weekday) Repetition {
	return Repetition{Type: RepetitionCustom, Days: NewWeekdaySet(days...)}
}

// Kind returns the rule type, treating an unset type as NONE.
func (r Repetition) Kind() RepetitionType {
	if r.Type == "" {
		return RepetitionNone
	}
	return r.Type
}

// IsRecurring reports whether the rule produces more than the anchor occurrence.
func (r Repetition) IsRecurring() bool {
	return r.Kind() != RepetitionNone
}

// Indicator is the calendar classification of a task occurrence.
type Indicator string

const (
	IndicatorImportant Indicator = "important"
	IndicatorUrgent    Indicator = "urgent"
	IndicatorCombined  Indicator = "combined"
	IndicatorNone      Indicator = "none"
)

// ClassifyIndicator derives the indicator from a priority set.
func ClassifyIndicator(p PrioritySet) Indicator {
	important := p.Has(PriorityImportant)
	urgent := p.Has(PriorityUrgent)

	switch {
	case important && urgent:
		return IndicatorCombined
	case important:
		return IndicatorImportant
	case urgent:
		return IndicatorUrgent
	default:
		return IndicatorNone
	}
}

// Description returns guidance on how to handle a task of this class.
func (i Indicator) Description() string {
	switch i {
	case IndicatorCombined:
		return "Top priority: this task is both important and urgent. Do it now to avoid negative consequences."
	case IndicatorImportant:
		return "This task matters for long-term goals. Set aside dedicated time to finish it."
	case IndicatorUrgent:
		return "This task is urgent but could be delegated so you can focus on more important work."
	default:
		return "Low priority: this task can wait until higher-priority tasks are done."
	}
}

// StatusFilter selects tasks by completion state on their relevant date.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// PriorityFilter selects tasks by indicator class.
type PriorityFilter string

const (
	PriorityFilterAll       PriorityFilter = "all"
	PriorityFilterImportant PriorityFilter = "important"
	PriorityFilterUrgent    PriorityFilter = "urgent"
	PriorityFilterCombined  PriorityFilter = "combined"
	PriorityFilterNone      PriorityFilter = "none"
)

// Matches reports whether an indicator passes the filter.
// "important" and "urgent" match only the single-flag classes, not "combined".
func (f PriorityFilter) Matches(i Indicator) bool {
	if f == "" || f == PriorityFilterAll {
		return true
	}
	return string(f) == string(i)
}
