// Command seeder loads users, announcements and payroll figures from a YAML
// file into the portal database, or prints an argon2id hash with -hash.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/bootstrap"
	"github.com/example/bpo-portal/internal/config"
	"github.com/example/bpo-portal/internal/logging"
	"github.com/example/bpo-portal/internal/persistence/sqlite"
	"github.com/example/bpo-portal/internal/persistence/sqlite/migration"
	"github.com/example/bpo-portal/internal/seed"
)

func main() {
	logger := logging.New(os.Stderr, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("seeder failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *slog.Logger) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	defaultPath := os.Getenv("PORTAL_SQLITE_PATH")
	if defaultPath == "" {
		defaultPath = "portal.db"
	}

	flags := flag.NewFlagSet("seeder", flag.ContinueOnError)
	file := flags.String("file", "", "YAML fixture to load")
	dbPath := flags.String("db", defaultPath, "SQLite database path")
	hash := flags.String("hash", "", "print the argon2id hash of this password and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *hash != "" {
		encoded, err := application.CreatePasswordHash(*hash, application.DefaultArgon2idParams)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		_, err = fmt.Fprintln(stdout, encoded)
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file or -hash is required")
	}

	fixture, err := seed.ParseFile(*file)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(*dbPath), logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	services := bootstrap.NewServices(store, config.Config{SQLitePath: *dbPath}, logger, bootstrap.Options{})
	summary, err := seed.NewLoader(services.Users, services.Announcements, services.Payrolls, logger).Load(ctx, fixture)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "users=%d skipped=%d announcements=%d payrolls=%d\n",
		summary.Users, summary.SkippedUsers, summary.Announcements, summary.Payrolls)
	return err
}
