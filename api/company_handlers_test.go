package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newCompany = map[string]any{
	"handle":       "new",
	"name":         "New",
	"logoUrl":      "http://new.img",
	"description":  "DescNew",
	"numEmployees": 10,
}

func companyHandles(t *testing.T, r response) []string {
	t.Helper()
	list, ok := r.Body["companies"].([]any)
	require.True(t, ok, r.Raw)
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.(map[string]any)["handle"].(string)
	}
	return out
}

func TestCreateCompany(t *testing.T) {
	h := newHarness(t)

	resp := h.do("POST", "/companies", newCompany, h.u1Token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	assert.Equal(t, map[string]any{
		"handle":       "new",
		"name":         "New",
		"logoUrl":      "http://new.img",
		"description":  "DescNew",
		"numEmployees": float64(10),
	}, resp.Body["company"])
}

func TestCreateCompany_Failures(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do("POST", "/companies", newCompany, h.u2Token).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do("POST", "/companies", newCompany, "").Code)

	resp := h.do("POST", "/companies", map[string]any{"handle": "new", "numEmployees": 10}, h.u1Token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	bad := map[string]any{}
	for k, v := range newCompany {
		bad[k] = v
	}
	bad["logoUrl"] = "not-a-url"
	assert.Equal(t, http.StatusBadRequest, h.do("POST", "/companies", bad, h.u1Token).Code)

	dup := map[string]any{"handle": "c1", "name": "Other", "description": "d"}
	resp = h.do("POST", "/companies", dup, h.u1Token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "duplicate company: c1", errorMessage(resp))
}

func TestListCompanies(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"c1", "c2", "c3"}},
		{"?name=2", []string{"c2"}},
		{"?minEmployees=2", []string{"c2", "c3"}},
		{"?maxEmployees=1", []string{"c1"}},
		{"?name=c&minEmployees=2&maxEmployees=3", []string{"c2", "c3"}},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			resp := h.do("GET", "/companies"+c.query, nil, h.u2Token)
			require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
			assert.Equal(t, c.want, companyHandles(t, resp))
		})
	}
}

func TestListCompanies_BadFilters(t *testing.T) {
	h := newHarness(t)

	for _, q := range []string{
		"?minEmployees=3&maxEmployees=1",
		"?minEmployees=lots",
		"?minEmployees=-1",
		"?color=red",
	} {
		resp := h.do("GET", "/companies"+q, nil, h.u2Token)
		assert.Equal(t, http.StatusBadRequest, resp.Code, q)
	}

	resp := h.do("GET", "/companies?minEmployees=3&maxEmployees=1", nil, h.u2Token)
	assert.Equal(t, "minEmployees cannot be greater than maxEmployees", errorMessage(resp))
}

func TestGetCompany(t *testing.T) {
	h := newHarness(t)

	resp := h.do("GET", "/companies/c1", nil, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	company := resp.Body["company"].(map[string]any)
	assert.Equal(t, "C1", company["name"])
	assert.Len(t, company["jobs"], 2)

	resp = h.do("GET", "/companies/c3", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []any{}, resp.Body["company"].(map[string]any)["jobs"])

	resp = h.do("GET", "/companies/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "no company: nope", errorMessage(resp))
}

func TestUpdateCompany(t *testing.T) {
	h := newHarness(t)

	resp := h.do("PATCH", "/companies/c1", map[string]any{"name": "C1-new", "numEmployees": 7}, h.u1Token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, map[string]any{
		"handle":       "c1",
		"name":         "C1-new",
		"description":  "Desc1",
		"numEmployees": float64(7),
		"logoUrl":      "http://c1.img",
	}, resp.Body["company"])
}

func TestUpdateCompany_Failures(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized,
		h.do("PATCH", "/companies/c1", map[string]any{"name": "x"}, h.u2Token).Code)
	assert.Equal(t, http.StatusUnauthorized,
		h.do("PATCH", "/companies/c1", map[string]any{"name": "x"}, "").Code)
	assert.Equal(t, http.StatusNotFound,
		h.do("PATCH", "/companies/nope", map[string]any{"name": "x"}, h.u1Token).Code)

	// The handle is immutable.
	assert.Equal(t, http.StatusBadRequest,
		h.do("PATCH", "/companies/c1", map[string]any{"handle": "c1-new"}, h.u1Token).Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do("PATCH", "/companies/c1", map[string]any{"logoUrl": "not-a-url"}, h.u1Token).Code)

	resp := h.do("PATCH", "/companies/c1", map[string]any{}, h.u1Token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "No data", errorMessage(resp))
}

func TestDeleteCompany(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do("DELETE", "/companies/c1", nil, h.u2Token).Code)

	resp := h.do("DELETE", "/companies/c1", nil, h.u1Token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"deleted": "c1"}, resp.Body)

	assert.Equal(t, http.StatusNotFound, h.do("DELETE", "/companies/c1", nil, h.u1Token).Code)
}
