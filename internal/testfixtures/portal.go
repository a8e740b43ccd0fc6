package testfixtures

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/bootstrap"
	"github.com/example/bpo-portal/internal/config"
)

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// TestConfig returns the portal configuration used by harnesses.
func TestConfig() config.Config {
	return config.Config{
		HTTPPort:      0,
		SessionSecret: "test-session-secret",
		SessionTTL:    12 * time.Hour,
		Location:      Manila,
		TrustProxy:    true,
		CookieSecure:  false,
	}
}

// Portal is a fully wired portal over a temp-file store with a controllable
// clock and predictable session tokens.
type Portal struct {
	App    *bootstrap.App
	Clock  *Clock
	Tokens *TokenGenerator
}

// NewPortal builds a Portal that is closed when the test ends.
func NewPortal(tb testing.TB) *Portal {
	tb.Helper()

	clock := NewClock(time.Time{})
	tokens := NewTokenGenerator("session")
	storeConfig := SQLiteConfig(tb)

	app, err := bootstrap.New(context.Background(), TestConfig(), QuietLogger(), bootstrap.Options{
		SQLite:         &storeConfig,
		Now:            clock.NowFunc(),
		TokenGenerator: tokens.NextFunc(),
		PasswordHasher: func(password string) (string, error) {
			return application.CreatePasswordHash(password, FastArgon2idParams)
		},
	})
	if err != nil {
		tb.Fatalf("failed to build portal: %v", err)
	}
	tb.Cleanup(func() {
		_ = app.Close()
	})
	return &Portal{App: app, Clock: clock, Tokens: tokens}
}

// CreateUser provisions an active account with team (may be empty).
func (p *Portal) CreateUser(tb testing.TB, username, password, team string, staff bool) application.User {
	tb.Helper()
	user, err := p.App.Services.Users.CreateUser(context.Background(), application.SystemPrincipal, application.UserInput{
		Username: username,
		Password: password,
		Team:     team,
		IsStaff:  staff,
	})
	if err != nil {
		tb.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// RecordPayroll stores an unapproved payroll for userID with the given net pay.
func (p *Portal) RecordPayroll(tb testing.TB, userID int64, month, year int, netPay string) application.PayrollRecord {
	tb.Helper()
	base, err := decimal.NewFromString(netPay)
	if err != nil {
		tb.Fatalf("invalid net pay %q: %v", netPay, err)
	}
	payroll, err := p.App.Services.Payrolls.Record(context.Background(), application.SystemPrincipal, application.PayrollInput{
		UserID:     userID,
		Month:      month,
		Year:       year,
		BaseSalary: base.StringFixed(2),
		NetPay:     netPay,
	})
	if err != nil {
		tb.Fatalf("failed to record payroll: %v", err)
	}
	return payroll
}

// Publish stores an announcement. An empty team targets everyone.
func (p *Portal) Publish(tb testing.TB, title, team string) application.Announcement {
	tb.Helper()
	announcement, err := p.App.Services.Announcements.Publish(context.Background(), application.SystemPrincipal, application.AnnouncementInput{
		Title:      title,
		Content:    title + " details",
		TargetTeam: team,
	})
	if err != nil {
		tb.Fatalf("failed to publish announcement: %v", err)
	}
	return announcement
}

// Login posts the login form and returns the issued session cookie.
func (p *Portal) Login(tb testing.TB, username, password string) *http.Cookie {
	tb.Helper()
	rec := p.PostForm(nil, "/login", url.Values{"username": {username}, "password": {password}})
	if rec.Code != http.StatusFound {
		tb.Fatalf("login for %s returned %d: %s", username, rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session_token" && cookie.Value != "" {
			return cookie
		}
	}
	tb.Fatalf("login for %s issued no session cookie", username)
	return nil
}

// Get issues a GET request with an optional session cookie.
func (p *Portal) Get(session *http.Cookie, path string) *httptest.ResponseRecorder {
	return p.Do(httptest.NewRequest(http.MethodGet, path, nil), session)
}

// PostForm issues a form-encoded POST with an optional session cookie.
func (p *Portal) PostForm(session *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.Do(req, session)
}

// Do serves req through the portal router.
func (p *Portal) Do(req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	p.App.Handler.ServeHTTP(rec, req)
	return rec
}
