package api

import (
	"net/http"

	"github.com/erudithe/portal/internal/domain/user"
)

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.users.ListWorkers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if workers == nil {
		workers = []user.User{}
	}
	s.respondJSON(w, http.StatusOK, workers)
}

type createWorkerRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	WeeklyCapacity float64 `json:"weekly_capacity"`
}

func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.users.CreateWorker(r.Context(), user.CreateWorkerRequest{
		Name:           req.Name,
		Email:          req.Email,
		WeeklyCapacity: req.WeeklyCapacity,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, u)
}
