package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/bpo-portal/internal/persistence"
	"github.com/example/bpo-portal/internal/persistence/sqlite/migration"
	"modernc.org/sqlite"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.db")
	store, err := Open(context.Background(), migration.TempFileTestSQLiteConfig(path), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *Store, username string, team *string) persistence.User {
	t.Helper()
	user, err := store.Users.CreateUser(context.Background(), persistence.User{
		Username:     username,
		PasswordHash: "hash",
		Team:         team,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), migration.TempFileTestSQLiteConfig(path), logger)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("ping #%d: %v", i+1, err)
		}
		store.Close()
	}
}

func TestErrorMapper(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	mapper := NewErrorMapper()

	if err := mapper.MapError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	_, err := store.Pool().DB().ExecContext(ctx, `INSERT INTO attendance_records (user_id, date, time_in) VALUES (999, '2024-01-01', '2024-01-01T08:00:00.000000000Z')`)
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if mapped := mapper.MapError(err); !errors.Is(mapped, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", mapped)
	}

	_, err = store.Pool().DB().ExecContext(ctx, `INSERT INTO users (username, password_hash, team, created_at, updated_at) VALUES ('x', 'h', 'FINANCE', 'a', 'b')`)
	if mapped := mapper.MapError(err); !errors.Is(mapped, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", mapped)
	}

	if mapped := mapper.MapError(fmt.Errorf("UNIQUE constraint failed: users.username")); !errors.Is(mapped, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate from message fallback, got %v", mapped)
	}
}

func TestWithTransactionRollsBack(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	sentinel := errors.New("boom")

	err := store.Pool().WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO announcements (title, content, created_at) VALUES ('t', 'c', ?)`, formatTime(time.Now())); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	items, err := store.Announcements.ListAnnouncements(ctx, persistence.AnnouncementFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected rollback to discard insert, found %d rows", len(items))
	}
}
