package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewText(t *testing.T) {
	text, err := NewText("  Write report  ")
	require.NoError(t, err)
	assert.Equal(t, "Write report", text.String())

	_, err = NewText("   ")
	assert.True(t, errors.Is(err, ErrTextRequired))

	_, err = NewText(strings.Repeat("a", MaxTextLength+1))
	assert.True(t, errors.Is(err, ErrTextTooLong))

	_, err = NewText(strings.Repeat("é", MaxTextLength))
	assert.NoError(t, err, "length is counted in characters, not bytes")
}

func TestParsePriority_CaseInsensitive(t *testing.T) {
	testCases := []struct {
		input    string
		expected Priority
	}{
		{"IMPORTANT", PriorityImportant},
		{"important", PriorityImportant},
		{"Urgent", PriorityUrgent},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			p, err := ParsePriority(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
		})
	}

	_, err := ParsePriority("HIGH")
	assert.True(t, errors.Is(err, ErrInvalidPriority))
}

func TestParsePrioritySet_Deduplicates(t *testing.T) {
	set, err := ParsePrioritySet([]string{"urgent", "URGENT", "important"})
	require.NoError(t, err)
	assert.Equal(t, PrioritySet{PriorityUrgent, PriorityImportant}, set)
}

func TestNewRepetition(t *testing.T) {
	t.Run("empty type is NONE", func(t *testing.T) {
		r, err := NewRepetition("", nil)
		require.NoError(t, err)
		assert.Equal(t, RepetitionNone, r.Type)
	})

	t.Run("custom carries days", func(t *testing.T) {
		r, err := NewRepetition("custom", []int{3, 1, 3})
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, r.Days.Days())
	})

	t.Run("custom without days is the empty set", func(t *testing.T) {
		r, err := NewRepetition("CUSTOM", nil)
		require.NoError(t, err)
		assert.True(t, r.Days.Empty())
	})

	t.Run("days on other types are rejected", func(t *testing.T) {
		_, err := NewRepetition("WEEKLY", []int{1})
		assert.True(t, errors.Is(err, ErrInvalidRepetition))
	})

	t.Run("weekday out of range", func(t *testing.T) {
		_, err := NewRepetition("CUSTOM", []int{7})
		assert.True(t, errors.Is(err, ErrInvalidWeekday))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewRepetition("YEARLY", nil)
		assert.True(t, errors.Is(err, ErrInvalidRepetition))
	})
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(time.Friday, time.Sunday)

	assert.True(t, s.Has(time.Sunday))
	assert.True(t, s.Has(time.Friday))
	assert.False(t, s.Has(time.Monday))

	s = s.Toggle(time.Sunday).Toggle(time.Monday)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, s.Days())

	var empty WeekdaySet
	assert.True(t, empty.Empty())
	assert.Nil(t, empty.Days())
}

func TestWeekdaySet_JSON(t *testing.T) {
	out, err := json.Marshal(NewWeekdaySet(time.Saturday, time.Monday))
	require.NoError(t, err)
	assert.Equal(t, `[1,6]`, string(out))

	var s WeekdaySet
	require.NoError(t, json.Unmarshal([]byte(`[0,2]`), &s))
	assert.Equal(t, []time.Weekday{time.Sunday, time.Tuesday}, s.Days())

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.True(t, s.Empty())

	err = json.Unmarshal([]byte(`[9]`), &s)
	assert.True(t, errors.Is(err, ErrInvalidWeekday))
}

func TestParseFilters(t *testing.T) {
	status, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, status)

	status, err = ParseStatusFilter("Active")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)

	_, err = ParseStatusFilter("done")
	assert.True(t, errors.Is(err, ErrInvalidFilter))

	prio, err := ParsePriorityFilter("COMBINED")
	require.NoError(t, err)
	assert.Equal(t, PriorityFilterCombined, prio)

	_, err = ParsePriorityFilter("high")
	assert.True(t, errors.Is(err, ErrInvalidFilter))
}

func TestParseWeekdayName(t *testing.T) {
	d, err := ParseWeekdayName("wed")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d)

	d, err = ParseWeekdayName("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	_, err = ParseWeekdayName("funday")
	assert.True(t, errors.Is(err, ErrInvalidWeekday))
}
