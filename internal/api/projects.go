package api

import (
	"net/http"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	"github.com/go-chi/chi/v5"
)

// parseProjectStatus resolves a status query value, accepting "Pending"
// as shorthand for the full Pending Assignment label.
func parseProjectStatus(raw string) project.Status {
	if raw == "Pending" {
		return project.StatusPendingAssignment
	}
	return project.Status(raw)
}

// handleListProjects scopes the listing by role: workers see their
// assignments, clients their own submissions, admins everything.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromContext(r.Context())
	if id == nil {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	opts := project.ListOptions{
		Status: parseProjectStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}
	switch id.Role {
	case user.RoleWorker:
		opts.AssignedTo = id.ID
	case user.RoleClient:
		opts.ClientEmail = id.Email
	}

	projects, err := s.projects.List(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	s.respondJSON(w, http.StatusOK, projects)
}

// projectView decorates a project read with its consumed-allowance
// fraction so clients don't recompute it.
type projectView struct {
	*project.Project
	Progress float64 `json:"progress"`
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	// Non-admins only see projects in their own scope.
	id, _ := identity.FromContext(r.Context())
	if id != nil {
		if id.Role == user.RoleWorker && p.AssignedTo != id.ID {
			s.respondError(w, project.ErrProjectNotFound)
			return
		}
		if id.Role == user.RoleClient && p.Client.Email != id.Email {
			s.respondError(w, project.ErrProjectNotFound)
			return
		}
	}

	s.respondJSON(w, http.StatusOK, projectView{Project: p, Progress: p.Progress()})
}

type assignRequest struct {
	WorkerID string `json:"worker_id"`
}

func (s *Server) handleAssignProject(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.projects.Assign(r.Context(), chi.URLParam(r, "id"), req.WorkerID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

type statusRequest struct {
	Status project.Status `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.projects.UpdateStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

type hoursRequest struct {
	Minutes int `json:"minutes"`
}

func (s *Server) handleLogHours(w http.ResponseWriter, r *http.Request) {
	var req hoursRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.projects.LogHours(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Minutes)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.projects.Comment(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

// handleUploadCompletedFile stores a finished deliverable and journals
// the upload on the project log.
func (s *Server) handleUploadCompletedFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file"})
		return
	}
	defer f.Close()

	stored, err := s.files.Save(header.Filename, f)
	if err != nil {
		s.respondError(w, err)
		return
	}

	p, err := s.projects.AttachCompletedFile(r.Context(), actorFrom(r), chi.URLParam(r, "id"), stored)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

// handleServeFile streams a stored upload back out.
func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.files.Open(chi.URLParam(r, "name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
