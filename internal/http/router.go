package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/arsennaibaho/Tugas-IMK/internal/http/handler"
	mw "github.com/arsennaibaho/Tugas-IMK/internal/http/middleware"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(server *handler.Server, maxBodyBytes int64) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(routeSpanName)
	r.Use(mw.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.ErrorContext(r.Context(), "Failed to write health check response", "error", err)
		}
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", server.ListTasks)
			r.Post("/", server.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", server.GetTask)
				r.Patch("/", server.UpdateTask)
				r.Delete("/", server.DeleteTask)
				r.Post("/completions/{date}", server.ToggleCompletion)
				r.Put("/notes/{date}", server.SetNote)
				r.Get("/calendar.ics", server.ExportCalendar)
			})
		})

		r.Get("/calendar/indicators", server.CalendarIndicators)
		r.Get("/calendar/days/{date}", server.Day)
		r.Get("/dashboard", server.Dashboard)
	})

	return r
}

// instrument wraps the router so every request gets a server span.
// Spans start as "planner-api" and are renamed once chi has matched a route.
func instrument(h http.Handler, opts ...otelhttp.Option) http.Handler {
	return otelhttp.NewHandler(h, "planner-api", opts...)
}

// routeSpanName names the request span after the matched route pattern,
// keeping IDs and dates out of span names. Unmatched requests keep the
// handler's operation name.
func routeSpanName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return
		}
		if pattern := rctx.RoutePattern(); pattern != "" {
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + pattern)
		}
	})
}
