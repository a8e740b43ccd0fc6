package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/logging"
)

// SessionValidator resolves a session token to its principal.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

// RequireSession admits requests carrying a live session and stores the
// principal in the context. Other requests are redirected to the login page.
func RequireSession(validator SessionValidator, cookies SessionCookies, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.token(r)
			if token == "" {
				http.Redirect(w, r, loginLocation(r), http.StatusFound)
				return
			}

			principal, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				logger := handlerLogger(r.Context(), base, "RequireSession", "", "error_kind", application.ErrorKind(err))
				if application.ErrorKind(err) == "unexpected" {
					logger.ErrorContext(r.Context(), "session validation failed", "error", err)
					newResponder(base).writeError(r.Context(), w, http.StatusInternalServerError, nil)
					return
				}
				logger.InfoContext(r.Context(), "session rejected", "error", err)
				cookies.clear(w)
				http.Redirect(w, r, loginLocation(r), http.StatusFound)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			if logger := LoggerFromContext(ctx); logger != nil {
				ctx = ContextWithLogger(ctx, logger.With("user_id", principal.UserID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff redirects authenticated non-staff principals to the dashboard.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, loginLocation(r), http.StatusFound)
			return
		}
		if !principal.IsStaff {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger attaches a request-scoped logger carrying a request id and
// logs each request's status and duration.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := logging.NewRequestID()
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithRequestID(r.Context(), id)
			ctx = ContextWithLogger(ctx, logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", id)

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "request completed",
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

func loginLocation(r *http.Request) string {
	if r == nil || r.URL == nil || r.URL.Path == "" || r.URL.Path == "/" || r.URL.Path == "/login" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}

// safeNext returns next when it is a local absolute path, else "/".
func safeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return "/"
	}
	return next
}
