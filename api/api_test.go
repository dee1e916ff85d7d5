package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo/repotest"
	"github.com/Skryldev/jobly/telemetry"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

type harness struct {
	t       *testing.T
	srv     http.Handler
	db      *db.DB
	tokens  *auth.TokenService
	fx      repotest.Fixture
	u1Token string // admin
	u2Token string // not admin
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d := repotest.NewDB(t)
	fx := repotest.Seed(t, d)

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewHTTPMetrics(reg)
	require.NoError(t, err)

	h := &harness{
		t: t,
		srv: api.NewServer(api.Options{
			DB:       d,
			Hasher:   repotest.Hasher(),
			Tokens:   tokens,
			Metrics:  metrics,
			Gatherer: reg,
		}),
		db:     d,
		tokens: tokens,
		fx:     fx,
	}
	h.u1Token = h.token("u1", true)
	h.u2Token = h.token("u2", false)
	return h
}

func (h *harness) token(username string, admin bool) string {
	tok, err := h.tokens.Create(username, admin)
	require.NoError(h.t, err)
	return tok
}

type response struct {
	Code int
	Body map[string]any
	Raw  string
}

// do sends body (a string is sent verbatim, anything else JSON-encoded).
func (h *harness) do(method, path string, body any, token string) response {
	h.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Raw: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	}
	return out
}

func errorMessage(r response) string {
	e, _ := r.Body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

// ─────────────────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────────────────

func TestAuthToken(t *testing.T) {
	h := newHarness(t)

	resp := h.do("POST", "/auth/token", map[string]any{"username": "u1", "password": repotest.Password}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	tok, _ := resp.Body["token"].(string)
	claims, err := h.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestAuthToken_Failures(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"unknown user", map[string]any{"username": "no-such-user", "password": "password1"}, 401},
		{"wrong password", map[string]any{"username": "u1", "password": "nope"}, 401},
		{"missing data", map[string]any{"username": "u1"}, 400},
		{"invalid data", map[string]any{"username": 42, "password": "above-is-a-number"}, 400},
		{"unknown field", map[string]any{"username": "u1", "password": "x", "extra": true}, 400},
		{"malformed", `{"username":`, 400},
		{"empty", "", 400},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := h.do("POST", "/auth/token", c.body, "")
			assert.Equal(t, c.want, resp.Code, resp.Raw)
			assert.EqualValues(t, c.want, resp.Body["error"].(map[string]any)["status"])
		})
	}
}

func TestAuthRegister(t *testing.T) {
	h := newHarness(t)

	resp := h.do("POST", "/auth/register", map[string]any{
		"username":  "new",
		"firstName": "first",
		"lastName":  "last",
		"password":  "password",
		"email":     "new@email.com",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	claims, err := h.tokens.Verify(resp.Body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "new", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestAuthRegister_Failures(t *testing.T) {
	h := newHarness(t)

	resp := h.do("POST", "/auth/register", map[string]any{"username": "new"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = h.do("POST", "/auth/register", map[string]any{
		"username": "new", "firstName": "f", "lastName": "l",
		"password": "password", "email": "not-an-email",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, errorMessage(resp), "email")

	resp = h.do("POST", "/auth/register", map[string]any{
		"username": "new", "firstName": "f", "lastName": "l",
		"password": "password", "email": "new@email.com", "isAdmin": true,
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code, "self-registration cannot ask for admin")

	resp = h.do("POST", "/auth/register", map[string]any{
		"username": "u1", "firstName": "f", "lastName": "l",
		"password": "password", "email": "new@email.com",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "duplicate user: u1", errorMessage(resp))
}

// ─────────────────────────────────────────────────────────────────────────────
// Authentication middleware
// ─────────────────────────────────────────────────────────────────────────────

func TestAuthentication(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do("GET", "/companies", nil, h.u1Token).Code)
	assert.Equal(t, http.StatusOK, h.do("GET", "/companies", nil, h.u2Token).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do("GET", "/companies", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, h.do("GET", "/companies", nil, "not-a-token").Code)

	other, err := auth.NewTokenService("wrong-secret", 0)
	require.NoError(t, err)
	forged, err := other.Create("u1", true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.do("GET", "/companies", nil, forged).Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Misc
// ─────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	h := newHarness(t)

	resp := h.do("GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body["status"])
	assert.Contains(t, resp.Body["db"], "open")
}

func TestNotFoundRoute(t *testing.T) {
	h := newHarness(t)

	resp := h.do("GET", "/no-such-route", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Not Found", errorMessage(resp))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)

	h.do("GET", "/jobs", nil, "")
	resp := h.do("GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Raw, "jobly_http_request_duration_seconds")
	assert.Contains(t, resp.Raw, `pattern="/jobs"`)
}

func TestServerError_Is500(t *testing.T) {
	h := newHarness(t)

	_, err := h.db.Exec(t.Context(), "DROP TABLE applications")
	require.NoError(t, err)
	_, err = h.db.Exec(t.Context(), "DROP TABLE users")
	require.NoError(t, err)

	resp := h.do("GET", "/users", nil, h.u1Token)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal Server Error", errorMessage(resp))
}

func TestTracing_ServerSpans(t *testing.T) {
	d := repotest.NewDB(t)
	repotest.Seed(t, d)
	tokens, err := auth.NewTokenService("test-secret", 0)
	require.NoError(t, err)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := api.NewServer(api.Options{
		DB:     d,
		Hasher: repotest.Hasher(),
		Tokens: tokens,
		Tracer: tp.Tracer("api-test"),
	})

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest("GET", "/jobs/1", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	srv.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /jobs/{id}", spans[0].Name())
	assert.Equal(t, traceID, spans[0].SpanContext().TraceID().String())
	assert.True(t, spans[0].Parent().IsRemote())
}
