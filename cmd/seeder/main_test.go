package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/logging"
)

func TestRunPrintsHash(t *testing.T) {
	var out bytes.Buffer
	if err := run(t.Context(), []string{"-hash", "s3cret"}, &out, logging.New(io.Discard, slog.LevelError)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	encoded := strings.TrimSpace(out.String())
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash %q", encoded)
	}
	if err := application.VerifyPassword(encoded, "s3cret"); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestRunLoadsFixture(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "seed.yaml")
	content := "users:\n  - username: lead\n    password: pw\n    staff: true\nannouncements:\n  - title: Hello\n    content: Welcome aboard\n"
	if err := os.WriteFile(fixture, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var out bytes.Buffer
	args := []string{"-file", fixture, "-db", filepath.Join(dir, "portal.db")}
	if err := run(t.Context(), args, &out, logging.New(io.Discard, slog.LevelError)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "users=1 skipped=0 announcements=1 payrolls=0" {
		t.Fatalf("unexpected summary %q", got)
	}

	out.Reset()
	if err := run(t.Context(), args, &out, logging.New(io.Discard, slog.LevelError)); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "users=0 skipped=1 announcements=1 payrolls=0" {
		t.Fatalf("unexpected second summary %q", got)
	}
}

func TestRunRequiresInput(t *testing.T) {
	if err := run(t.Context(), nil, io.Discard, logging.New(io.Discard, slog.LevelError)); err == nil {
		t.Fatal("expected an error without -file or -hash")
	}
}
