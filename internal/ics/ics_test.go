package ics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/recurring"
)

var stamp = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func TestBuildTaskCalendar_OneOff(t *testing.T) {
	task := domain.Task{
		ID:         "0190a1b2-0000-7000-8000-000000000001",
		Text:       "Submit report; draft, v2",
		Deadline:   calendar.MustParse("2024-06-10"),
		Priority:   domain.NewPrioritySet(domain.PriorityImportant, domain.PriorityUrgent),
		Repetition: domain.NoRepetition(),
	}
	task.SetNote(task.Deadline, "line one\nline two")

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "UID:task-0190a1b2-0000-7000-8000-000000000001@planner\r\n")
	assert.Contains(t, out, "DTSTAMP:20240601T083000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Submit report\\; draft\\, v2\r\n")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240610\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240611\r\n")
	assert.Contains(t, out, "DESCRIPTION:line one\\nline two\r\n")
	assert.Contains(t, out, "CATEGORIES:COMBINED\r\n")
	assert.NotContains(t, out, "RRULE")
	assert.NotContains(t, out, "STATUS")
}

func TestBuildTaskCalendar_CompletedOneOff(t *testing.T) {
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-10")}
	task.SetCompleted(task.Deadline, true)

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS:CANCELLED\r\n")
	assert.NotContains(t, out, "EXDATE")
}

func TestBuildTaskCalendar_ExDates(t *testing.T) {
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-03"), Repetition: domain.Weekly()}
	task.SetCompleted(calendar.MustParse("2024-06-17"), true)
	task.SetCompleted(calendar.MustParse("2024-06-10"), true)
	// Not a Monday: dropped.
	task.SetCompleted(calendar.MustParse("2024-06-11"), true)

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)

	assert.Contains(t, out, "RRULE:FREQ=WEEKLY\r\nEXDATE;VALUE=DATE:20240610\r\nEXDATE;VALUE=DATE:20240617\r\n")
	assert.NotContains(t, out, "20240611")
}

func TestBuildTaskCalendar_CustomStartsOnFirstOccurrence(t *testing.T) {
	// 2024-06-10 is a Monday; only Fridays are selected.
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-10"), Repetition: domain.Custom(time.Friday)}
	task.SetNote(calendar.MustParse("2024-06-14"), "first friday")
	require.False(t, recurring.IsOccurrence(task, task.Deadline))

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)

	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240614\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240615\r\n")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=FR\r\n")
	assert.Contains(t, out, "DESCRIPTION:first friday\r\n")
	assert.NotContains(t, out, "20240610")
}

func TestBuildTaskCalendar_CustomAnchorSelected(t *testing.T) {
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-10"), Repetition: domain.Custom(time.Monday, time.Friday)}

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240610\r\n")
}

func TestBuildTaskCalendar_CustomWithoutDays(t *testing.T) {
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-10"), Repetition: domain.Custom()}

	out, err := BuildTaskCalendar(task, stamp)
	require.NoError(t, err)

	assert.Equal(t, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Planner//Task Export//EN\r\n"+
		"CALSCALE:GREGORIAN\r\nMETHOD:PUBLISH\r\nEND:VCALENDAR\r\n", out)
	assert.NotContains(t, out, "VEVENT")
}

func TestBuildTaskCalendar_MissingDeadline(t *testing.T) {
	_, err := BuildTaskCalendar(domain.Task{ID: "a", Text: "x"}, stamp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeadlineRequired))
}

func TestBuildTaskCalendar_InvalidRule(t *testing.T) {
	task := domain.Task{ID: "a", Text: "x", Deadline: calendar.MustParse("2024-06-03"), Repetition: domain.Repetition{Type: "YEARLY"}}
	_, err := BuildTaskCalendar(task, stamp)
	assert.True(t, errors.Is(err, domain.ErrInvalidRepetition))
}

func TestRecurrenceRule(t *testing.T) {
	tests := []struct {
		name   string
		rule   domain.Repetition
		anchor string
		want   string
	}{
		{"none", domain.NoRepetition(), "2024-06-10", ""},
		{"daily", domain.Daily(), "2024-06-10", "FREQ=DAILY"},
		{"weekly", domain.Weekly(), "2024-06-10", "FREQ=WEEKLY"},
		{"monthly mid", domain.Monthly(), "2024-06-10", "FREQ=MONTHLY;BYMONTHDAY=10"},
		{"monthly 28th", domain.Monthly(), "2024-02-28", "FREQ=MONTHLY;BYMONTHDAY=28"},
		{"monthly 30th", domain.Monthly(), "2024-04-30", "FREQ=MONTHLY;BYMONTHDAY=28,29,30;BYSETPOS=-1"},
		{"monthly 31st", domain.Monthly(), "2024-01-31", "FREQ=MONTHLY;BYMONTHDAY=28,29,30,31;BYSETPOS=-1"},
		{"custom", domain.Custom(time.Friday, time.Monday), "2024-06-10", "FREQ=WEEKLY;BYDAY=MO,FR"},
		{"custom empty", domain.Custom(), "2024-06-10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecurrenceRule(tt.rule, calendar.MustParse(tt.anchor)))
		})
	}
}

func TestFold(t *testing.T) {
	short := "SUMMARY:short"
	assert.Equal(t, short, fold(short))

	long := "DESCRIPTION:" + strings.Repeat("é", 60)
	folded := fold(long)
	for _, l := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(l), maxLineOctets)
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
}
