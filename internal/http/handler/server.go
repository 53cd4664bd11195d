package handler

import (
	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
)

// Server holds the HTTP handlers for the planner API.
type Server struct {
	planner *planner.Service
}

// NewServer creates a new HTTP handler server.
func NewServer(planner *planner.Service) *Server {
	return &Server{
		planner: planner,
	}
}
