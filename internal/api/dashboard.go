package api

import (
	"net/http"
	"time"

	"github.com/erudithe/portal/internal/domain/capacity"
	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/timeline"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), project.ListOptions{})
	if err != nil {
		s.respondError(w, err)
		return
	}
	workers, err := s.users.ListWorkers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, capacity.Portfolio(projects, workers))
}

func (s *Server) handleUtilization(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), project.ListOptions{})
	if err != nil {
		s.respondError(w, err)
		return
	}
	workers, err := s.users.ListWorkers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, capacity.Utilization(workers, projects))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), project.ListOptions{})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, timeline.Layout(projects, time.Now()))
}
