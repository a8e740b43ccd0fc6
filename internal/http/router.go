package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the handlers and collaborators mounted by NewRouter.
type RouterConfig struct {
	Auth       *AuthHandler
	Portal     *PortalHandler
	Attendance *AttendanceHandler
	Leaves     *LeaveHandler
	Payrolls   *PayrollHandler

	Sessions SessionValidator
	Cookies  SessionCookies
	ClientIP ClientIPResolver
	Health   Pinger
	Logger   *slog.Logger

	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the portal's route tree. Public routes are /login, the
// static assets and /healthz; everything else requires a session, and the
// approval and export routes additionally require staff.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(ResolveClientIP(cfg.ClientIP))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/sw.js", staticAsset("sw.js", "application/javascript; charset=utf-8"))
	r.Get("/manifest.json", staticAsset("manifest.json", "application/manifest+json"))
	r.Get("/healthz", healthHandler(cfg.Health, logger))

	if cfg.Auth != nil {
		r.Get("/login", cfg.Auth.LoginForm)
		r.Post("/login", cfg.Auth.Login)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, cfg.Cookies, logger))

		if cfg.Auth != nil {
			r.Post("/logout", cfg.Auth.Logout)
		}

		if cfg.Portal != nil {
			r.Get("/", cfg.Portal.Dashboard)
			r.Get("/profile", cfg.Portal.Profile)
			r.Get("/announcements", cfg.Portal.Announcements)
		}

		if cfg.Attendance != nil {
			r.Post("/time_in", cfg.Attendance.TimeIn)
			r.Post("/time_out", cfg.Attendance.TimeOut)
			r.Get("/attendance", cfg.Attendance.History)
			r.With(RequireStaff).Get("/attendance/export", cfg.Attendance.Export)
		}

		if cfg.Leaves != nil {
			r.Route("/leave", func(r chi.Router) {
				r.Get("/request", cfg.Leaves.RequestForm)
				r.Post("/request", cfg.Leaves.Submit)
				r.Get("/list", cfg.Leaves.List)
				r.Group(func(r chi.Router) {
					r.Use(RequireStaff)
					r.Get("/approval", cfg.Leaves.Approval)
					r.Get("/approve/{id}", cfg.Leaves.Approve)
					r.Get("/reject/{id}", cfg.Leaves.Reject)
				})
			})
		}

		if cfg.Payrolls != nil {
			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", cfg.Payrolls.List)
				r.Group(func(r chi.Router) {
					r.Use(RequireStaff)
					r.Get("/approval", cfg.Payrolls.Approval)
					r.Get("/approve/{id}", cfg.Payrolls.Approve)
				})
				r.Get("/{id}", cfg.Payrolls.Detail)
			})
		}
	})

	return r
}
