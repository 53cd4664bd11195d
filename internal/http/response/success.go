package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// encodingFailedJSON is written when a success payload cannot be marshaled.
const encodingFailedJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`

// write marshals data before touching the status line, so an encoding
// failure still yields a 500 with a JSON body instead of a truncated 2xx.
func write(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(encodingFailedJSON))
		return
	}
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, data)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Calendar sends an iCalendar document as a download.
func Calendar(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
