package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobTitles(t *testing.T, r response) []string {
	t.Helper()
	list, ok := r.Body["jobs"].([]any)
	require.True(t, ok, r.Raw)
	out := make([]string, len(list))
	for i, j := range list {
		out[i] = j.(map[string]any)["title"].(string)
	}
	return out
}

func TestCreateJob(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{"title": "J-new", "salary": 10, "equity": 0.2, "companyHandle": "c1"}

	resp := h.do("POST", "/jobs", body, h.u1Token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	job := resp.Body["job"].(map[string]any)
	assert.NotZero(t, job["id"])
	assert.Equal(t, "J-new", job["title"])
	assert.Equal(t, 0.2, job["equity"])

	assert.Equal(t, http.StatusUnauthorized, h.do("POST", "/jobs", body, h.u2Token).Code)

	body["equity"] = 1.5
	assert.Equal(t, http.StatusBadRequest, h.do("POST", "/jobs", body, h.u1Token).Code)

	resp = h.do("POST", "/jobs", map[string]any{"title": "x", "companyHandle": "nope"}, h.u1Token)
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Raw)
}

func TestListJobs(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"j1", "j2", "j3"}},
		{"?title=1", []string{"j1"}},
		{"?minSalary=250", []string{"j3"}},
		{"?hasEquity=true", []string{"j1", "j2"}},
		{"?hasEquity=false", []string{"j1", "j2", "j3"}},
		{"?minSalary=150&hasEquity=true", []string{"j2"}},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			resp := h.do("GET", "/jobs"+c.query, nil, "")
			require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
			assert.Equal(t, c.want, jobTitles(t, resp))
		})
	}

	assert.Equal(t, http.StatusBadRequest, h.do("GET", "/jobs?hasEquity=maybe", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do("GET", "/jobs?company=c1", nil, "").Code)
}

func TestGetJob(t *testing.T) {
	h := newHarness(t)
	id := h.fx.JobIDs[0]

	resp := h.do("GET", fmt.Sprintf("/jobs/%d", id), nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, map[string]any{
		"id":            float64(id),
		"title":         "j1",
		"salary":        float64(100),
		"equity":        0.1,
		"companyHandle": "c1",
	}, resp.Body["job"])

	assert.Equal(t, http.StatusNotFound, h.do("GET", "/jobs/0", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do("GET", "/jobs/abc", nil, "").Code)
}

func TestUpdateJob(t *testing.T) {
	h := newHarness(t)
	path := fmt.Sprintf("/jobs/%d", h.fx.JobIDs[0])

	resp := h.do("PATCH", path, map[string]any{"title": "J-new"}, h.u1Token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, "J-new", resp.Body["job"].(map[string]any)["title"])

	assert.Equal(t, http.StatusUnauthorized, h.do("PATCH", path, map[string]any{"title": "x"}, h.u2Token).Code)
	assert.Equal(t, http.StatusNotFound, h.do("PATCH", "/jobs/0", map[string]any{"title": "x"}, h.u1Token).Code)
	assert.Equal(t, http.StatusBadRequest, h.do("PATCH", path, map[string]any{"companyHandle": "c2"}, h.u1Token).Code)
	assert.Equal(t, http.StatusBadRequest, h.do("PATCH", path, map[string]any{"salary": "lots"}, h.u1Token).Code)
	assert.Equal(t, http.StatusBadRequest, h.do("PATCH", path, map[string]any{}, h.u1Token).Code)
}

func TestDeleteJob(t *testing.T) {
	h := newHarness(t)
	id := h.fx.JobIDs[0]
	path := fmt.Sprintf("/jobs/%d", id)

	assert.Equal(t, http.StatusUnauthorized, h.do("DELETE", path, nil, h.u2Token).Code)

	resp := h.do("DELETE", path, nil, h.u1Token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"deleted": float64(id)}, resp.Body)

	assert.Equal(t, http.StatusNotFound, h.do("DELETE", path, nil, h.u1Token).Code)
}
