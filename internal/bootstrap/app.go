// Package bootstrap assembles the portal from configuration: the SQLite store,
// the application services and the HTTP router.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/config"
	httptransport "github.com/example/bpo-portal/internal/http"
	"github.com/example/bpo-portal/internal/persistence/sqlite"
	"github.com/example/bpo-portal/internal/persistence/sqlite/migration"
)

// Services groups the application services over one store.
type Services struct {
	Auth          *application.AuthService
	Users         *application.UserService
	Attendance    *application.AttendanceService
	Leaves        *application.LeaveService
	Payrolls      *application.PayrollService
	Announcements *application.AnnouncementService
}

// App is a fully wired portal instance.
type App struct {
	Store    *sqlite.Store
	Services Services
	Handler  http.Handler

	logger *slog.Logger
}

// Options overrides collaborators that tests need to control.
type Options struct {
	// SQLite replaces the configuration derived from cfg.SQLitePath.
	SQLite *migration.SQLiteConfig
	// Now replaces the wall clock.
	Now func() time.Time
	// TokenGenerator replaces random session tokens.
	TokenGenerator func() string
	// PasswordHasher replaces the argon2id hasher used when provisioning users.
	PasswordHasher application.PasswordHasher
}

// New opens and migrates the store and wires the services and router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	storeConfig := migration.DefaultSQLiteConfig(cfg.SQLitePath)
	if opts.SQLite != nil {
		storeConfig = *opts.SQLite
	}

	store, err := sqlite.Open(ctx, storeConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	services := NewServices(store, cfg, logger, opts)
	cookies := httptransport.NewSessionCookies(cfg.SessionSecret, cfg.CookieSecure)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(services.Auth, cookies, logger),
		Portal:     httptransport.NewPortalHandler(services.Users, services.Announcements, services.Attendance, logger),
		Attendance: httptransport.NewAttendanceHandler(services.Attendance, logger),
		Leaves:     httptransport.NewLeaveHandler(services.Leaves, logger),
		Payrolls:   httptransport.NewPayrollHandler(services.Payrolls, logger),
		Sessions:   services.Auth,
		Cookies:    cookies,
		ClientIP:   httptransport.ClientIPResolver{TrustProxy: cfg.TrustProxy},
		Health:     store,
		Logger:     logger,
	})

	return &App{Store: store, Services: services, Handler: router, logger: logger}, nil
}

// NewServices wires the application services over store.
func NewServices(store *sqlite.Store, cfg config.Config, logger *slog.Logger, opts Options) Services {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	credentials := newCredentialStoreAdapter(store.Users)
	sessions := newSessionRepositoryAdapter(store.Sessions)

	return Services{
		Auth:          application.NewAuthServiceWithLogger(credentials, sessions, nil, opts.TokenGenerator, now, cfg.SessionTTL, logger),
		Users:         application.NewUserService(newUserRepositoryAdapter(store.Users), opts.PasswordHasher, now, logger),
		Attendance:    application.NewAttendanceService(newAttendanceRepositoryAdapter(store.Attendance), location, now, logger),
		Leaves:        application.NewLeaveService(newLeaveRepositoryAdapter(store.Leaves), now, logger),
		Payrolls:      application.NewPayrollService(newPayrollRepositoryAdapter(store.Payrolls), now, logger),
		Announcements: application.NewAnnouncementService(newAnnouncementRepositoryAdapter(store.Announcements), now, logger),
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	if err := a.Store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
		return err
	}
	return nil
}
