package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/bpo-portal/internal/persistence"
	"github.com/example/bpo-portal/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	_ persistence.UserRepository         = (*UserRepository)(nil)
	_ persistence.SessionRepository      = (*SessionRepository)(nil)
	_ persistence.AttendanceRepository   = (*AttendanceRepository)(nil)
	_ persistence.LeaveRepository        = (*LeaveRepository)(nil)
	_ persistence.PayrollRepository      = (*PayrollRepository)(nil)
	_ persistence.AnnouncementRepository = (*AnnouncementRepository)(nil)
)

// Store bundles the SQLite-backed repositories over one connection pool.
type Store struct {
	pool   *ConnectionPool
	logger *slog.Logger

	Users         *UserRepository
	Sessions      *SessionRepository
	Attendance    *AttendanceRepository
	Leaves        *LeaveRepository
	Payrolls      *PayrollRepository
	Announcements *AnnouncementRepository
}

// Open connects to the database described by config and applies pending
// migrations before returning.
func Open(ctx context.Context, config migration.SQLiteConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}

	store := &Store{
		pool:          pool,
		logger:        logger,
		Users:         NewUserRepository(pool),
		Sessions:      NewSessionRepository(pool),
		Attendance:    NewAttendanceRepository(pool),
		Leaves:        NewLeaveRepository(pool),
		Payrolls:      NewPayrollRepository(pool),
		Announcements: NewAnnouncementRepository(pool),
	}

	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying connection pool.
func (s *Store) Pool() *ConnectionPool {
	return s.pool
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
