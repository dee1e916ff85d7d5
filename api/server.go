// Package api is jobly's HTTP surface: a chi router over the repo layer
// with bearer-token authentication.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/telemetry"
)

// Options wires a Server. DB, Hasher and Tokens are required.
type Options struct {
	DB     *db.DB
	Hasher auth.PasswordHasher
	Tokens *auth.TokenService
	Logger *slog.Logger

	// Metrics, when set, records per-route request latency.
	Metrics *telemetry.HTTPMetrics
	// Gatherer, when set, is served on GET /metrics.
	Gatherer prometheus.Gatherer
	// Tracer, when set, opens a server span per request.
	Tracer trace.Tracer
	// Propagator extracts incoming trace context. Defaults to W3C
	// traceparent.
	Propagator propagation.TextMapPropagator
}

// Server handles the jobly REST API.
type Server struct {
	db         *db.DB
	companies  repo.CompanyRepository
	jobs       repo.JobRepository
	users      repo.UserRepository
	tokens     *auth.TokenService
	logger     *slog.Logger
	metrics    *telemetry.HTTPMetrics
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	router     chi.Router
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	s := &Server{
		db:         opts.DB,
		companies:  repo.NewCompanyRepo(opts.DB),
		jobs:       repo.NewJobRepo(opts.DB),
		users:      repo.NewUserRepo(opts.DB, opts.Hasher),
		tokens:     opts.Tokens,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		propagator: opts.Propagator,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.propagator == nil {
		s.propagator = propagation.TraceContext{}
	}
	s.router = s.routes(opts.Gatherer)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.logRequests,
		s.trace,
		s.observe,
		s.recoverer,
		s.authenticate,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { writeError(w, errNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, &Error{Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"})
	})

	r.Get("/health", s.handle(s.health))
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", s.handle(s.token))
		r.Post("/register", s.handle(s.register))
	})

	r.Route("/companies", func(r chi.Router) {
		r.With(EnsureAdmin).Post("/", s.handle(s.createCompany))
		r.With(EnsureLoggedIn).Get("/", s.handle(s.listCompanies))
		r.Get("/{handle}", s.handle(s.getCompany))
		r.With(EnsureAdmin).Patch("/{handle}", s.handle(s.updateCompany))
		r.With(EnsureAdmin).Delete("/{handle}", s.handle(s.deleteCompany))
	})

	r.Route("/jobs", func(r chi.Router) {
		r.With(EnsureAdmin).Post("/", s.handle(s.createJob))
		r.Get("/", s.handle(s.listJobs))
		r.Get("/{id}", s.handle(s.getJob))
		r.With(EnsureAdmin).Patch("/{id}", s.handle(s.updateJob))
		r.With(EnsureAdmin).Delete("/{id}", s.handle(s.deleteJob))
	})

	r.Route("/users", func(r chi.Router) {
		r.With(EnsureAdmin).Post("/", s.handle(s.createUser))
		r.With(EnsureAdmin).Get("/", s.handle(s.listUsers))
		r.Group(func(r chi.Router) {
			r.Use(EnsureCorrectUserOrAdmin)
			r.Get("/{username}", s.handle(s.getUser))
			r.Patch("/{username}", s.handle(s.updateUser))
			r.Delete("/{username}", s.handle(s.deleteUser))
			r.Post("/{username}/jobs/{id}", s.handle(s.applyToJob))
		})
	})

	return r
}

// handlerFunc is an http.HandlerFunc that reports failure by returning an
// error instead of writing it.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		if status := writeError(w, err); status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "api: request failed",
				slog.String("route", routePattern(r)),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	if err := s.db.Ping(r.Context()); err != nil {
		return &Error{Status: http.StatusServiceUnavailable, Message: "database unavailable", Err: err}
	}
	st := s.db.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"db": map[string]int{
			"open":  st.OpenConnections,
			"inUse": st.InUse,
			"idle":  st.Idle,
		},
	})
	return nil
}
