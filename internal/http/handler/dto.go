package handler

import (
	"maps"
	"slices"

	"github.com/arsennaibaho/Tugas-IMK/internal/agenda"
	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/dashboard"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/indicator"
	"github.com/arsennaibaho/Tugas-IMK/internal/ptr"
)

// RepetitionDTO is the wire form of a recurrence rule.
type RepetitionDTO struct {
	Type string `json:"type"`
	Days []int  `json:"days,omitempty"`
}

// TaskDTO is the wire form of a task.
type TaskDTO struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Deadline    string            `json:"deadline"`
	Priority    []string          `json:"priority"`
	Repetition  RepetitionDTO     `json:"repetition"`
	Indicator   string            `json:"indicator"`
	Completions []string          `json:"completions"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// EntryDTO is a task viewed on one of its dates.
type EntryDTO struct {
	Task      TaskDTO `json:"task"`
	Date      string  `json:"date"`
	Completed bool    `json:"completed"`
	Note      string  `json:"note,omitempty"`
}

// CreateTaskRequest is the body of POST /v1/tasks.
type CreateTaskRequest struct {
	Text       string         `json:"text"`
	Deadline   string         `json:"deadline"`
	Priority   []string       `json:"priority"`
	Repetition *RepetitionDTO `json:"repetition"`
}

// UpdateTaskRequest is the body of PATCH /v1/tasks/{id}.
// Absent fields keep their stored value. NoteDate and Note set or clear one note.
type UpdateTaskRequest struct {
	Text       *string        `json:"text"`
	Deadline   *string        `json:"deadline"`
	Priority   *[]string      `json:"priority"`
	Repetition *RepetitionDTO `json:"repetition"`
	NoteDate   *string        `json:"note_date"`
	Note       *string        `json:"note"`
}

// NoteRequest is the body of PUT /v1/tasks/{id}/notes/{date}.
type NoteRequest struct {
	Note string `json:"note"`
}

// IndicatorsResponse is the body of GET /v1/calendar/indicators.
type IndicatorsResponse struct {
	Horizon string              `json:"horizon"`
	Days    map[string][]string `json:"days"`
	Legend  map[string]string   `json:"legend,omitempty"`
}

// DashboardResponse is the body of GET /v1/dashboard.
type DashboardResponse struct {
	Overdue  []TaskDTO `json:"overdue"`
	Upcoming []TaskDTO `json:"upcoming"`
}

// MapTaskToDTO converts a domain task to its wire form.
func MapTaskToDTO(t *domain.Task) TaskDTO {
	prio := make([]string, 0, len(t.Priority))
	for _, p := range t.Priority {
		prio = append(prio, string(p))
	}

	rep := RepetitionDTO{Type: string(t.Repetition.Kind())}
	for _, d := range t.Repetition.Days.Days() {
		rep.Days = append(rep.Days, int(d))
	}

	var completions []string
	for k, done := range t.Completions {
		if done {
			completions = append(completions, k)
		}
	}
	slices.Sort(completions)
	if completions == nil {
		completions = []string{}
	}

	return TaskDTO{
		ID:          t.ID,
		Text:        t.Text,
		Deadline:    t.Deadline.Key(),
		Priority:    prio,
		Repetition:  rep,
		Indicator:   string(t.Indicator()),
		Completions: completions,
		Notes:       maps.Clone(t.Notes),
	}
}

func mapTasks(tasks []domain.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, MapTaskToDTO(&tasks[i]))
	}
	return out
}

func mapEntries(entries []agenda.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, EntryDTO{
			Task:      MapTaskToDTO(&e.Task),
			Date:      e.Date.Key(),
			Completed: e.Completed,
			Note:      e.Note,
		})
	}
	return out
}

func mapIndicators(m indicator.Map, horizon calendar.Date) IndicatorsResponse {
	days := make(map[string][]string, len(m))
	legend := make(map[string]string)
	for key, classes := range m {
		names := make([]string, 0, len(classes))
		for _, c := range classes {
			names = append(names, string(c))
			legend[string(c)] = c.Description()
		}
		days[key] = names
	}
	return IndicatorsResponse{Horizon: horizon.Key(), Days: days, Legend: legend}
}

func mapDashboard(d dashboard.Dashboard) DashboardResponse {
	return DashboardResponse{
		Overdue:  mapTasks(d.Overdue),
		Upcoming: mapTasks(d.Upcoming),
	}
}

func parsePriorities(values []string) ([]domain.Priority, error) {
	set, err := domain.ParsePrioritySet(values)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func parseRepetition(r *RepetitionDTO) (domain.Repetition, error) {
	if r == nil {
		return domain.NoRepetition(), nil
	}
	return domain.NewRepetition(r.Type, r.Days)
}

// toInput builds service input from a create request.
func (req CreateTaskRequest) toInput() (planner.TaskInput, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return planner.TaskInput{}, err
	}
	prio, err := parsePriorities(req.Priority)
	if err != nil {
		return planner.TaskInput{}, err
	}
	rule, err := parseRepetition(req.Repetition)
	if err != nil {
		return planner.TaskInput{}, err
	}
	return planner.TaskInput{
		Text:       req.Text,
		Deadline:   deadline,
		Priority:   prio,
		Repetition: rule,
	}, nil
}

// merge applies the present fields of req over an existing task.
func (req UpdateTaskRequest) merge(existing *domain.Task) (planner.TaskInput, error) {
	input := planner.TaskInput{
		Text:       existing.Text,
		Deadline:   existing.Deadline,
		Priority:   slices.Clone(existing.Priority),
		Repetition: existing.Repetition,
	}

	input.Text = ptr.Deref(req.Text, existing.Text)
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			return planner.TaskInput{}, err
		}
		input.Deadline = deadline
	}
	if req.Priority != nil {
		prio, err := parsePriorities(*req.Priority)
		if err != nil {
			return planner.TaskInput{}, err
		}
		input.Priority = prio
	}
	if req.Repetition != nil {
		rule, err := parseRepetition(req.Repetition)
		if err != nil {
			return planner.TaskInput{}, err
		}
		input.Repetition = rule
	}
	return input, nil
}

// An empty deadline is left zero so the service reports it as missing.
func parseDeadline(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	return calendar.Parse(s)
}
