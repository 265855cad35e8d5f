package api

import (
	"net/http"

	"github.com/erudithe/portal/internal/domain/user"
)

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// handleLogin exchanges a known email for a session token. Accounts are
// provisioned out of band; unknown emails get a 404.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		s.respondError(w, err)
		return
	}

	token, err := s.tokens.Token(u)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}
