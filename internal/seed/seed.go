// Package seed loads onboarding users, announcements and payroll figures from
// a YAML fixture file into the portal services.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/bpo-portal/internal/application"
)

// File is the YAML document accepted by the seeder.
type File struct {
	Users         []User         `yaml:"users"`
	Announcements []Announcement `yaml:"announcements"`
	Payrolls      []Payroll      `yaml:"payrolls"`
}

// User provisions one account. Password is plaintext and hashed on load.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Team     string `yaml:"team"`
	Position string `yaml:"position"`
	Staff    bool   `yaml:"staff"`
	Inactive bool   `yaml:"inactive"`
}

// Announcement publishes one notice. An empty team targets everyone.
type Announcement struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Team    string `yaml:"team"`
}

// Payroll records one month of figures for the named user.
type Payroll struct {
	Username   string `yaml:"username"`
	Month      int    `yaml:"month"`
	Year       int    `yaml:"year"`
	BaseSalary string `yaml:"base_salary"`
	Deductions string `yaml:"deductions"`
	Bonuses    string `yaml:"bonuses"`
	NetPay     string `yaml:"net_pay"`
	Approved   bool   `yaml:"approved"`
}

// Summary counts what a Load call stored.
type Summary struct {
	Users         int
	SkippedUsers  int
	Announcements int
	Payrolls      int
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(r io.Reader) (File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("parsing seed file: %w", err)
	}
	return file, nil
}

// ParseFile opens and decodes the fixture at path.
func ParseFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// UserProvisioner creates and lists accounts.
type UserProvisioner interface {
	CreateUser(ctx context.Context, principal application.Principal, input application.UserInput) (application.User, error)
	ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error)
}

// Publisher stores announcements.
type Publisher interface {
	Publish(ctx context.Context, principal application.Principal, input application.AnnouncementInput) (application.Announcement, error)
}

// PayrollRecorder stores and approves payroll figures.
type PayrollRecorder interface {
	Record(ctx context.Context, principal application.Principal, input application.PayrollInput) (application.PayrollRecord, error)
	Approve(ctx context.Context, principal application.Principal, payrollID int64) (application.PayrollRecord, error)
}

// Loader applies fixture files through the application services as the
// system principal.
type Loader struct {
	users         UserProvisioner
	announcements Publisher
	payrolls      PayrollRecorder
	logger        *slog.Logger
}

// NewLoader wires a Loader.
func NewLoader(users UserProvisioner, announcements Publisher, payrolls PayrollRecorder, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{users: users, announcements: announcements, payrolls: payrolls, logger: logger}
}

// Load stores users first so payroll rows can resolve usernames. Usernames
// that already exist, compared case-insensitively, are skipped.
func (l *Loader) Load(ctx context.Context, file File) (Summary, error) {
	var summary Summary
	principal := application.SystemPrincipal

	accounts, err := l.users.ListUsers(ctx, principal)
	if err != nil {
		return summary, fmt.Errorf("listing users: %w", err)
	}
	ids := make(map[string]int64, len(accounts)+len(file.Users))
	for _, account := range accounts {
		ids[usernameKey(account.Username)] = account.ID
	}

	for i, u := range file.Users {
		if _, exists := ids[usernameKey(u.Username)]; exists {
			l.logger.InfoContext(ctx, "user already exists", "username", u.Username)
			summary.SkippedUsers++
			continue
		}
		created, err := l.users.CreateUser(ctx, principal, application.UserInput{
			Username: u.Username,
			Password: u.Password,
			Team:     u.Team,
			Position: u.Position,
			IsStaff:  u.Staff,
			Inactive: u.Inactive,
		})
		if err != nil {
			return summary, fmt.Errorf("users[%d] %q: %w", i, u.Username, err)
		}
		ids[usernameKey(created.Username)] = created.ID
		summary.Users++
	}

	for i, a := range file.Announcements {
		if _, err := l.announcements.Publish(ctx, principal, application.AnnouncementInput{
			Title:      a.Title,
			Content:    a.Content,
			TargetTeam: a.Team,
		}); err != nil {
			return summary, fmt.Errorf("announcements[%d]: %w", i, err)
		}
		summary.Announcements++
	}

	for i, p := range file.Payrolls {
		userID, ok := ids[usernameKey(p.Username)]
		if !ok {
			return summary, fmt.Errorf("payrolls[%d]: unknown user %q", i, p.Username)
		}
		record, err := l.payrolls.Record(ctx, principal, application.PayrollInput{
			UserID:     userID,
			Month:      p.Month,
			Year:       p.Year,
			BaseSalary: p.BaseSalary,
			Deductions: p.Deductions,
			Bonuses:    p.Bonuses,
			NetPay:     p.NetPay,
		})
		if err != nil {
			return summary, fmt.Errorf("payrolls[%d]: %w", i, err)
		}
		if p.Approved {
			if _, err := l.payrolls.Approve(ctx, principal, record.ID); err != nil {
				return summary, fmt.Errorf("payrolls[%d] approve: %w", i, err)
			}
		}
		summary.Payrolls++
	}

	l.logger.InfoContext(ctx, "seed loaded",
		"users", summary.Users,
		"skipped_users", summary.SkippedUsers,
		"announcements", summary.Announcements,
		"payrolls", summary.Payrolls,
	)
	return summary, nil
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
