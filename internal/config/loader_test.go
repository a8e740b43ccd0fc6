package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var portalKeys = []string{
	"PORTAL_HTTP_PORT",
	"PORTAL_SQLITE_PATH",
	"PORTAL_SESSION_SECRET",
	"PORTAL_SESSION_TTL",
	"PORTAL_TIMEZONE",
	"PORTAL_TRUST_PROXY",
	"PORTAL_COOKIE_SECURE",
}

// clearEnv registers every portal key with t.Setenv so the originals are
// restored, then unsets them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range portalKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		const secret = "super-secret"
		t.Setenv("PORTAL_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "portal.db" {
			t.Fatalf("unexpected default path: %q", cfg.SQLitePath)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.SessionTTL != 12*time.Hour || cfg.Location != time.UTC || !cfg.TrustProxy || !cfg.CookieSecure {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_SESSION_SECRET", "s")
		t.Setenv("PORTAL_HTTP_PORT", "9090")
		t.Setenv("PORTAL_SQLITE_PATH", "/var/lib/portal/portal.db")
		t.Setenv("PORTAL_SESSION_TTL", "30m")
		t.Setenv("PORTAL_TIMEZONE", "UTC")
		t.Setenv("PORTAL_TRUST_PROXY", "false")
		t.Setenv("PORTAL_COOKIE_SECURE", "0")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.SQLitePath != "/var/lib/portal/portal.db" || cfg.SessionTTL != 30*time.Minute {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.TrustProxy || cfg.CookieSecure {
			t.Fatalf("expected booleans to be disabled, got %+v", cfg)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: PORTAL_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports missing and invalid values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_HTTP_PORT", "abc")
		t.Setenv("PORTAL_SESSION_TTL", "-1h")
		t.Setenv("PORTAL_TIMEZONE", "Mars/Olympus")
		t.Setenv("PORTAL_COOKIE_SECURE", "maybe")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "missing required environment variables: PORTAL_SESSION_SECRET; invalid environment variable values: PORTAL_HTTP_PORT, PORTAL_SESSION_TTL, PORTAL_TIMEZONE, PORTAL_COOKIE_SECURE"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORTAL_SESSION_SECRET=from-file\nPORTAL_HTTP_PORT=7070\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Setenv("PORTAL_HTTP_PORT", "6060")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.SessionSecret)
	}
	if cfg.HTTPPort != 6060 {
		t.Fatalf("expected process environment to win, got %d", cfg.HTTPPort)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
