package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skryldev/jobly/auth"
)

// ─────────────────────────────────────────────────────────────────────────────
// Authentication
// ─────────────────────────────────────────────────────────────────────────────

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFrom returns the verified caller, if any.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// authenticate stores the claims of a valid bearer token in the request
// context. Missing or invalid tokens are not an error here; the Ensure*
// guards decide.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			raw, ok = strings.CutPrefix(header, "bearer ")
		}
		if ok && raw != "" {
			claims, err := s.tokens.Verify(strings.TrimSpace(raw))
			if err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			} else {
				s.logger.DebugContext(r.Context(), "api: rejected token", slog.Any("error", err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureLoggedIn rejects anonymous requests with 401.
func EnsureLoggedIn(next http.Handler) http.Handler {
	return guard(next, func(auth.Claims, *http.Request) bool { return true })
}

// EnsureAdmin admits only admins.
func EnsureAdmin(next http.Handler) http.Handler {
	return guard(next, func(c auth.Claims, _ *http.Request) bool { return c.IsAdmin })
}

// EnsureCorrectUserOrAdmin admits admins and the user named by the
// {username} route parameter.
func EnsureCorrectUserOrAdmin(next http.Handler) http.Handler {
	return guard(next, func(c auth.Claims, r *http.Request) bool {
		return c.IsAdmin || c.Username == chi.URLParam(r, "username")
	})
}

func guard(next http.Handler, allow func(auth.Claims, *http.Request) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFrom(r.Context())
		if !ok || !allow(c, r) {
			writeError(w, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Access log, recovery, metrics, tracing
// ─────────────────────────────────────────────────────────────────────────────

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// logRequests writes one access-log line per request. It logs from a defer
// so a panicking handler is still recorded.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := statusOf(ww)
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			s.logger.Log(r.Context(), level, "api: request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// recoverer turns a handler panic into a 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.ErrorContext(r.Context(), "api: handler panic",
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())),
				)
				writeError(w, &Error{Status: http.StatusInternalServerError, Message: "Internal Server Error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.metrics.Observe(routePattern(r), r.Method, statusOf(ww), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

// trace opens a server span per request, joined to the caller's trace when
// the request carries W3C trace headers. The span is renamed to the route
// pattern once routing is done.
func (s *Server) trace(next http.Handler) http.Handler {
	if s.tracer == nil {
		return next
	}
	prop := s.propagator
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method, trace.WithSpanKind(trace.SpanKindServer))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := statusOf(ww)
			if p := routePattern(r); p != "" {
				span.SetName(r.Method + " " + p)
			}
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.End()
		}()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.String("http.host", r.Host),
		)
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
