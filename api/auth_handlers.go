package api

import (
	"net/http"

	"github.com/Skryldev/jobly/models"
)

// token exchanges a username and password for a token.
func (s *Server) token(w http.ResponseWriter, r *http.Request) error {
	var p models.LoginParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	u, err := s.users.Authenticate(r.Context(), p.Username, p.Password)
	if err != nil {
		return err
	}
	tok, err := s.tokens.Create(u.Username, u.IsAdmin)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
	return nil
}

// register creates a non-admin user and logs them in.
func (s *Server) register(w http.ResponseWriter, r *http.Request) error {
	var p models.RegisterUserParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	u, err := s.users.Register(r.Context(), p.CreateParams())
	if err != nil {
		return err
	}
	tok, err := s.tokens.Create(u.Username, u.IsAdmin)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": tok})
	return nil
}
