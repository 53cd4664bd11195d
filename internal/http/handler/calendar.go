package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/http/response"
	"github.com/arsennaibaho/Tugas-IMK/internal/indicator"
)

// CalendarIndicators returns the indicator map up to the horizon,
// optionally narrowed to one month.
// GET /v1/calendar/indicators?month=YYYY-MM
func (s *Server) CalendarIndicators(w http.ResponseWriter, r *http.Request) {
	var (
		m   indicator.Map
		err error
	)

	if month := r.URL.Query().Get("month"); month != "" {
		t, perr := time.Parse("2006-01", month)
		if perr != nil {
			response.FromDomainError(w, r, fmt.Errorf("%w: month %q", domain.ErrInvalidFilter, month))
			return
		}
		m, err = s.planner.CalendarMonth(r.Context(), t.Year(), t.Month())
	} else {
		m, err = s.planner.CalendarIndicators(r.Context())
	}
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapIndicators(m, s.planner.Horizon()))
}

// Day returns every task with an occurrence on the date.
// GET /v1/calendar/days/{date}
func (s *Server) Day(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	entries, err := s.planner.DueOn(r.Context(), date)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"date":    date.Key(),
		"entries": mapEntries(entries),
	})
}

// Dashboard returns the overdue and upcoming one-off tasks.
// GET /v1/dashboard
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.planner.Dashboard(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapDashboard(d))
}
