package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort      int
	SQLitePath    string
	SessionSecret string
	SessionTTL    time.Duration
	Location      *time.Location
	TrustProxy    bool
	CookieSecure  bool
}

// LoadDotEnv copies variables from a dotenv file into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Missing required keys and malformed
// values are reported together in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLitePath:   "portal.db",
		SessionTTL:   12 * time.Hour,
		Location:     time.UTC,
		TrustProxy:   true,
		CookieSecure: true,
	}

	var missing, invalid []string

	if portValue := lookup("PORTAL_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := lookup("PORTAL_SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	if secret := lookup("PORTAL_SESSION_SECRET"); secret == "" {
		missing = append(missing, "PORTAL_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := lookup("PORTAL_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PORTAL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if zone := lookup("PORTAL_TIMEZONE"); zone != "" {
		location, err := time.LoadLocation(zone)
		if err != nil {
			invalid = append(invalid, "PORTAL_TIMEZONE")
		} else {
			cfg.Location = location
		}
	}

	if !parseBool("PORTAL_TRUST_PROXY", &cfg.TrustProxy) {
		invalid = append(invalid, "PORTAL_TRUST_PROXY")
	}
	if !parseBool("PORTAL_COOKIE_SECURE", &cfg.CookieSecure) {
		invalid = append(invalid, "PORTAL_COOKIE_SECURE")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variable values: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseBool overwrites target when key is set. It reports false for malformed values.
func parseBool(key string, target *bool) bool {
	value := lookup(key)
	if value == "" {
		return true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	*target = parsed
	return true
}
