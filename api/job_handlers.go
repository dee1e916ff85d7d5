package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Skryldev/jobly/models"
)

// jobID parses the {id} route parameter.
func jobID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid job id: "+raw, err)
	}
	return id, nil
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) error {
	var p models.CreateJobParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	j, err := s.jobs.Create(r.Context(), p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"job": j})
	return nil
}

// listJobs accepts title, minSalary and hasEquity.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) error {
	var f models.JobFilter
	if err := decodeQuery(r.URL.Query(), &f); err != nil {
		return err
	}
	js, err := s.jobs.FindAll(r.Context(), f)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": js})
	return nil
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}
	j, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
	return nil
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}
	var p models.UpdateJobParams
	if err := decodeBody(w, r, &p); err != nil {
		return err
	}
	j, err := s.jobs.Update(r.Context(), id, p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
	return nil
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}
	if err := s.jobs.Remove(r.Context(), id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	return nil
}
