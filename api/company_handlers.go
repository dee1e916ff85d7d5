package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Skryldev/jobly/models"
)

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) error {
	var p models.CreateCompanyParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	c, err := s.companies.Create(r.Context(), p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"company": c})
	return nil
}

// listCompanies accepts name, minEmployees and maxEmployees.
func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) error {
	var f models.CompanyFilter
	if err := decodeQuery(r.URL.Query(), &f); err != nil {
		return err
	}
	cs, err := s.companies.FindAll(r.Context(), f)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": cs})
	return nil
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) error {
	c, err := s.companies.Get(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c})
	return nil
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) error {
	var p models.UpdateCompanyParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	c, err := s.companies.Update(r.Context(), chi.URLParam(r, "handle"), p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c})
	return nil
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) error {
	handle := chi.URLParam(r, "handle")
	if err := s.companies.Remove(r.Context(), handle); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": handle})
	return nil
}
