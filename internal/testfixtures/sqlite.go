package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/bpo-portal/internal/logging"
	"github.com/example/bpo-portal/internal/persistence/sqlite"
	"github.com/example/bpo-portal/internal/persistence/sqlite/migration"
)

// SQLiteConfig returns a temp-file configuration under tb's temporary
// directory.
func SQLiteConfig(tb testing.TB) migration.SQLiteConfig {
	tb.Helper()
	return migration.TempFileTestSQLiteConfig(filepath.Join(tb.TempDir(), "portal.db"))
}

// NewSQLiteStore opens a migrated temp-file store that is closed when the
// test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	store, err := sqlite.Open(context.Background(), SQLiteConfig(tb), QuietLogger())
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// QuietLogger returns a JSON logger whose output is discarded.
func QuietLogger() *slog.Logger {
	return logging.New(io.Discard, slog.LevelError)
}
