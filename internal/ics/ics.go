// Package ics exports a task as an iCalendar (RFC 5545) all-day event whose
// recurrence rule reproduces the planner's own projection.
package ics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/recurring"
)

const (
	dateLayout  = "20060102"
	stampLayout = "20060102T150405Z"

	// maxLineOctets is the content line limit before folding.
	maxLineOctets = 75
)

var byDay = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// BuildTaskCalendar builds a VCALENDAR holding one all-day VEVENT for task.
// A deadline is required so the event has a concrete start date.
//
// DTSTART is always an instance of an RRULE series, so it is the first real
// occurrence rather than the anchor. A task without any occurrence yields a
// VCALENDAR with no VEVENT.
func BuildTaskCalendar(task domain.Task, now time.Time) (string, error) {
	if task.Deadline.IsZero() {
		return "", fmt.Errorf("calendar export: %w", domain.ErrDeadlineRequired)
	}
	if err := task.Repetition.Validate(); err != nil {
		return "", fmt.Errorf("calendar export: %w", err)
	}

	title := strings.TrimSpace(task.Text)
	if title == "" {
		title = "Task"
	}

	uid := fmt.Sprintf("task-%s@planner", strings.TrimSpace(task.ID))
	if strings.TrimSpace(task.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@planner", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Planner//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	start, ok := firstOccurrence(task)
	if !ok {
		return render(append(lines, "END:VCALENDAR")), nil
	}

	lines = append(lines,
		"BEGIN:VEVENT",
		"UID:"+escapeText(uid),
		"DTSTAMP:"+now.UTC().Format(stampLayout),
		"SUMMARY:"+escapeText(title),
		"DTSTART;VALUE=DATE:"+formatDate(start),
		"DTEND;VALUE=DATE:"+formatDate(start.AddDays(1)),
	)
	if note := task.Note(start); note != "" {
		lines = append(lines, "DESCRIPTION:"+escapeText(note))
	}
	if ind := task.Indicator(); ind != domain.IndicatorNone {
		lines = append(lines, "CATEGORIES:"+strings.ToUpper(string(ind)))
	}

	rrule := RecurrenceRule(task.Repetition, task.Deadline)
	if rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
		for _, d := range exceptions(task) {
			lines = append(lines, "EXDATE;VALUE=DATE:"+formatDate(d))
		}
	} else if task.IsCompleted(task.Deadline) {
		lines = append(lines, "STATUS:CANCELLED")
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")
	return render(lines), nil
}

// firstOccurrence returns the earliest occurrence on or after the anchor.
// Only CUSTOM rules can start later than the anchor or never occur at all.
func firstOccurrence(task domain.Task) (calendar.Date, bool) {
	if task.Repetition.Kind() != domain.RepetitionCustom {
		return task.Deadline, true
	}
	calc := recurring.WeekdaysCalculator{Days: task.Repetition.Days}
	return calc.NextOccurrence(task.Deadline, task.Deadline)
}

func render(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(fold(l))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RecurrenceRule returns the RRULE value equivalent to rule for a series
// anchored at anchor, or "" when the series has at most the anchor occurrence.
//
// Monthly series anchored after the 28th select the last existing day among
// 28..anchor.Day() in each month, which is the end-of-month clamp.
func RecurrenceRule(rule domain.Repetition, anchor calendar.Date) string {
	switch rule.Kind() {
	case domain.RepetitionDaily:
		return "FREQ=DAILY"
	case domain.RepetitionWeekly:
		return "FREQ=WEEKLY"
	case domain.RepetitionMonthly:
		day := anchor.Day()
		if day <= 28 {
			return "FREQ=MONTHLY;BYMONTHDAY=" + strconv.Itoa(day)
		}
		days := make([]string, 0, day-27)
		for i := 28; i <= day; i++ {
			days = append(days, strconv.Itoa(i))
		}
		return "FREQ=MONTHLY;BYMONTHDAY=" + strings.Join(days, ",") + ";BYSETPOS=-1"
	case domain.RepetitionCustom:
		weekdays := rule.Days.Days()
		if len(weekdays) == 0 {
			return ""
		}
		names := make([]string, len(weekdays))
		for i, wd := range weekdays {
			names[i] = byDay[wd]
		}
		return "FREQ=WEEKLY;BYDAY=" + strings.Join(names, ",")
	default:
		return ""
	}
}

// exceptions returns the completed occurrence dates of task, ascending.
// Keys that are not valid occurrences are dropped.
func exceptions(task domain.Task) []calendar.Date {
	var out []calendar.Date
	for key, done := range task.Completions {
		if !done {
			continue
		}
		d, err := calendar.Parse(key)
		if err != nil || !recurring.IsOccurrence(task, d) {
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, calendar.Date.Compare)
	return out
}

func formatDate(d calendar.Date) string {
	return d.Midnight(time.UTC).Format(dateLayout)
}

func escapeText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}

// fold splits a content line into chunks of at most maxLineOctets octets,
// continuation lines starting with a single space. Runes are never split.
func fold(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}

	var b strings.Builder
	limit := maxLineOctets
	n := 0
	for _, r := range line {
		size := utf8.RuneLen(r)
		if n+size > limit {
			b.WriteString("\r\n ")
			n = 0
			// The leading space counts toward the continuation line.
			limit = maxLineOctets - 1
		}
		b.WriteRune(r)
		n += size
	}
	return b.String()
}
