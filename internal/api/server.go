// Package api exposes the portal's REST surface: quote intake and
// decisions, project lifecycle, worker management, dashboards, and the
// change-event stream.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	"github.com/erudithe/portal/internal/storage"
	"github.com/erudithe/portal/internal/watch"
	"github.com/go-chi/chi/v5"
)

// Server wires HTTP handlers to the domain services.
type Server struct {
	quotes   *quote.Service
	projects *project.Service
	users    *user.Service
	files    *storage.FileManager
	tokens   *identity.Manager
	hub      *watch.Hub
	logger   *slog.Logger
}

// NewServer creates the API server.
func NewServer(quotes *quote.Service, projects *project.Service, users *user.Service,
	files *storage.FileManager, tokens *identity.Manager, hub *watch.Hub, logger *slog.Logger) *Server {
	return &Server{
		quotes:   quotes,
		projects: projects,
		users:    users,
		files:    files,
		tokens:   tokens,
		hub:      hub,
		logger:   logger,
	}
}

// Router builds the route tree. Quote submission and login are public;
// everything else requires a bearer token.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/files/{name}", s.handleServeFile)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/quotes", s.handleSubmitQuote)

		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(s.tokens))

			r.Get("/events", s.handleEvents)
			r.Get("/projects", s.handleListProjects)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Post("/projects/{id}/status", s.handleUpdateStatus)
			r.Post("/projects/{id}/comments", s.handleComment)

			r.Group(func(r chi.Router) {
				r.Use(identity.RequireRole(user.RoleWorker, user.RoleAdmin))
				r.Post("/projects/{id}/hours", s.handleLogHours)
				r.Post("/projects/{id}/files", s.handleUploadCompletedFile)
			})

			r.Group(func(r chi.Router) {
				r.Use(identity.RequireRole(user.RoleAdmin))
				r.Get("/quotes", s.handleListQuotes)
				r.Post("/quotes/{id}/approve", s.handleApproveQuote)
				r.Post("/quotes/{id}/reject", s.handleRejectQuote)
				r.Post("/projects/{id}/assign", s.handleAssignProject)
				r.Get("/workers", s.handleListWorkers)
				r.Post("/workers", s.handleCreateWorker)
				r.Get("/dashboard/stats", s.handleDashboardStats)
				r.Get("/dashboard/utilization", s.handleUtilization)
				r.Get("/timeline", s.handleTimeline)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quote.ErrQuoteNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrWorkerNotFound),
		errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quote.ErrNotPending),
		errors.Is(err, project.ErrAlreadyAssigned),
		errors.Is(err, project.ErrInvalidTransition),
		errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, quote.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidMinutes),
		errors.Is(err, project.ErrEmptyComment),
		errors.Is(err, project.ErrNotAWorker),
		errors.Is(err, user.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		s.respondJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// actor returns the acting user for log attribution.
func actorFrom(r *http.Request) project.Actor {
	id, _ := identity.FromContext(r.Context())
	if id == nil {
		return project.Actor{}
	}
	return project.Actor{ID: id.ID, Name: id.Name}
}
