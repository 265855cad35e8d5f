package api

import (
	"net/http"
	"strconv"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 32 << 20

// handleSubmitQuote accepts a multipart quote submission: pricing fields,
// client contact details, and the source documents.
func (s *Server) handleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	pageCount, err := strconv.Atoi(r.FormValue("page_count"))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid page_count"})
		return
	}

	req := quote.CreateRequest{
		ProjectType: project.Type(r.FormValue("project_type")),
		PageCount:   pageCount,
		Client: project.Client{
			Name:    r.FormValue("client_name"),
			Email:   r.FormValue("client_email"),
			Company: r.FormValue("client_company"),
			Phone:   r.FormValue("client_phone"),
		},
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			f, err := header.Open()
			if err != nil {
				s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable file upload"})
				return
			}
			stored, err := s.files.Save(header.Filename, f)
			f.Close()
			if err != nil {
				s.respondError(w, err)
				return
			}
			req.SourceFiles = append(req.SourceFiles, stored)
		}
	}

	q, err := s.quotes.Create(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, q)
}

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	opts := quote.ListOptions{Status: quote.Status(r.URL.Query().Get("status"))}

	quotes, err := s.quotes.List(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if quotes == nil {
		quotes = []quote.Quote{}
	}
	s.respondJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleApproveQuote(w http.ResponseWriter, r *http.Request) {
	p, err := s.quotes.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRejectQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, q)
}
