package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Skryldev/jobly/models"
)

// createUser lets an admin add a user, admin or not. The response carries
// a token for the new account.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) error {
	var p models.CreateUserParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	u, err := s.users.Register(r.Context(), p)
	if err != nil {
		return err
	}
	tok, err := s.tokens.Create(u.Username, u.IsAdmin)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u, "token": tok})
	return nil
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) error {
	us, err := s.users.FindAll(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": us})
	return nil
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) error {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
	return nil
}

// updateUser applies a partial update. Only admins may change isAdmin.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) error {
	var p models.UpdateUserParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	if c, _ := ClaimsFrom(r.Context()); p.IsAdmin != nil && !c.IsAdmin {
		return errUnauthorized
	}
	u, err := s.users.Update(r.Context(), chi.URLParam(r, "username"), p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
	return nil
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) error {
	username := chi.URLParam(r, "username")
	if err := s.users.Remove(r.Context(), username); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": username})
	return nil
}

func (s *Server) applyToJob(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}
	if err := s.users.ApplyToJob(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": id})
	return nil
}
