package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// SystemPrincipal acts for provisioning tools that run outside a login session.
var SystemPrincipal = Principal{Username: "system", IsStaff: true}

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user UserCredentials) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// UserInput captures the fields accepted when provisioning an account.
type UserInput struct {
	Username string
	Password string
	Team     string
	Position string
	IsStaff  bool
	Inactive bool
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService exposes account provisioning and profile lookups.
type UserService struct {
	users  UserRepository
	hash   PasswordHasher
	now    func() time.Time
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hash: hash, now: now, logger: defaultLogger(logger)}
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, principal Principal) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateUser validates input and persists a new account. Only staff may
// provision accounts.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "UserService", "CreateUser",
		"principal_id", principal.UserID,
		"username", strings.TrimSpace(input.Username),
	)
	defer func() {
		logOutcome(ctx, logger, err, "user creation", "user_id", user.ID)
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}

	username := strings.TrimSpace(input.Username)
	position := strings.TrimSpace(input.Position)
	vErr := &ValidationError{}
	if username == "" {
		vErr.add("username", "username is required")
	} else if utf8.RuneCountInString(username) > 150 {
		vErr.add("username", "username must be at most 150 characters")
	}
	if input.Password == "" {
		vErr.add("password", "password is required")
	}
	team, ok := NormalizeTeam(input.Team)
	if !ok {
		vErr.add("team", "team must be one of "+strings.Join(Teams, ", "))
	}
	if utf8.RuneCountInString(position) > 100 {
		vErr.add("position", "position must be at most 100 characters")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hash(input.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := s.now().UTC()
	user, err = s.users.CreateUser(ctx, UserCredentials{
		User: User{
			Username:  username,
			Team:      team,
			Position:  position,
			IsStaff:   input.IsStaff,
			IsActive:  !input.Inactive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	})
	if errors.Is(err, ErrAlreadyExists) {
		err = &ValidationError{FieldErrors: map[string]string{"username": "username is already taken"}}
	}
	return
}

// ListUsers returns every account. Only staff may list accounts.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsStaff {
		return nil, ErrUnauthorized
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
