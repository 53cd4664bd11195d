package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arsennaibaho/Tugas-IMK/internal/agenda"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/http/response"
	"github.com/arsennaibaho/Tugas-IMK/internal/ptr"
)

// ListTasks returns the filtered main list.
// GET /v1/tasks?status=&priority=
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status, err := domain.ParseStatusFilter(q.Get("status"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	prio, err := domain.ParsePriorityFilter(q.Get("priority"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	entries, err := s.planner.ListTasks(r.Context(), agenda.Options{Status: status, Priority: prio})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"entries": mapEntries(entries)})
}

// CreateTask adds a task.
// POST /v1/tasks
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	input, err := req.toInput()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	created, err := s.planner.AddTask(r.Context(), input)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, map[string]any{"task": MapTaskToDTO(created)})
}

// GetTask returns one task.
// GET /v1/tasks/{id}
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.planner.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, map[string]any{"task": MapTaskToDTO(task)})
}

// UpdateTask edits a task. Fields absent from the body keep their stored value.
// PATCH /v1/tasks/{id}
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := s.planner.GetTask(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	input, err := req.merge(existing)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var noteDate calendar.Date
	var note string
	if req.NoteDate != nil {
		if noteDate, err = calendar.Parse(*req.NoteDate); err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		note = ptr.Deref(req.Note, "")
	}

	updated, err := s.planner.UpdateTask(r.Context(), id, input, noteDate, note)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"task": MapTaskToDTO(updated)})
}

// DeleteTask removes a task.
// DELETE /v1/tasks/{id}
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ToggleCompletion flips the completion of one occurrence.
// POST /v1/tasks/{id}/completions/{date}
func (s *Server) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	task, err := s.planner.ToggleCompletion(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"task":      MapTaskToDTO(task),
		"completed": task.IsCompleted(date),
	})
}

// SetNote sets or clears the note on one occurrence.
// PUT /v1/tasks/{id}/notes/{date}
func (s *Server) SetNote(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	task, err := s.planner.SetNote(r.Context(), chi.URLParam(r, "id"), date, req.Note)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"task": MapTaskToDTO(task)})
}

// ExportCalendar returns the task as an iCalendar file.
// GET /v1/tasks/{id}/calendar.ics
func (s *Server) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := s.planner.ExportICS(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Calendar(w, "task-"+id+".ics", body)
}
