package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLength is the longest task text accepted, in characters.
const MaxTextLength = 500

// Text is a validated task text value object (1-500 characters).
type Text struct {
	value string
}

// NewText creates a new Text, trimming surrounding whitespace.
func NewText(s string) (Text, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Text{}, ErrTextRequired
	}

	if utf8.RuneCountInString(s) > MaxTextLength {
		return Text{}, ErrTextTooLong
	}

	return Text{value: s}, nil
}

// String returns the text value.
func (t Text) String() string {
	return t.value
}

// ParsePriority validates and creates a Priority. Matching is case-insensitive.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))

	switch p {
	case PriorityImportant, PriorityUrgent:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// ParsePrioritySet validates a list of priority flags.
func ParsePrioritySet(values []string) (PrioritySet, error) {
	flags := make([]Priority, 0, len(values))
	for _, v := range values {
		p, err := ParsePriority(v)
		if err != nil {
			return nil, err
		}
		flags = append(flags, p)
	}
	return NewPrioritySet(flags...), nil
}

// ParseRepetitionType validates and creates a RepetitionType.
// An empty string is NONE.
func ParseRepetitionType(s string) (RepetitionType, error) {
	if strings.TrimSpace(s) == "" {
		return RepetitionNone, nil
	}

	rt := RepetitionType(strings.ToUpper(strings.TrimSpace(s)))

	switch rt {
	case RepetitionNone, RepetitionDaily, RepetitionWeekly, RepetitionMonthly, RepetitionCustom:
		return rt, nil
	default:
		return "", fmt.Errorf("%w: unknown type %s", ErrInvalidRepetition, s)
	}
}

// ParseWeekdays validates weekday indices (0-6, Sunday = 0).
func ParseWeekdays(idx []int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, i := range idx {
		if i < 0 || i > 6 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, i)
		}
		s |= 1 << i
	}
	return s, nil
}

// NewRepetition validates a rule type and its weekday payload.
// Days are only meaningful for CUSTOM; passing days for any other type is an error.
// A CUSTOM rule without days is the empty set.
func NewRepetition(typ string, days []int) (Repetition, error) {
	rt, err := ParseRepetitionType(typ)
	if err != nil {
		return Repetition{}, err
	}

	if rt != RepetitionCustom {
		if len(days) > 0 {
			return Repetition{}, fmt.Errorf("%w: days are only allowed for %s", ErrInvalidRepetition, RepetitionCustom)
		}
		return Repetition{Type: rt}, nil
	}

	set, err := ParseWeekdays(days)
	if err != nil {
		return Repetition{}, err
	}
	return Repetition{Type: rt, Days: set}, nil
}

// Validate checks the rule invariants.
func (r Repetition) Validate() error {
	switch r.Kind() {
	case RepetitionNone, RepetitionDaily, RepetitionWeekly, RepetitionMonthly:
		if !r.Days.Empty() {
			return fmt.Errorf("%w: days are only allowed for %s", ErrInvalidRepetition, RepetitionCustom)
		}
		return nil
	case RepetitionCustom:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %s", ErrInvalidRepetition, r.Type)
	}
}

// ParseStatusFilter validates a status filter. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(s)))

	switch f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: status %s", ErrInvalidFilter, s)
	}
}

// ParsePriorityFilter validates a priority filter. Empty means all.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	f := PriorityFilter(strings.ToLower(strings.TrimSpace(s)))

	switch f {
	case "":
		return PriorityFilterAll, nil
	case PriorityFilterAll, PriorityFilterImportant, PriorityFilterUrgent,
		PriorityFilterCombined, PriorityFilterNone:
		return f, nil
	default:
		return "", fmt.Errorf("%w: priority %s", ErrInvalidFilter, s)
	}
}

// ParseWeekdayName parses a weekday by English name or three-letter abbreviation.
func ParseWeekdayName(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}
