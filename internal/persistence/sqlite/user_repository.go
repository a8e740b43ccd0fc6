package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/bpo-portal/internal/persistence"
)

const userColumns = `id, username, password_hash, team, position, last_ip, is_staff, is_active, created_at, updated_at`

// UserRepository implements persistence.UserRepository using SQLite
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts a new user and returns it with its assigned id
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query := `
		INSERT INTO users (username, password_hash, team, position, last_ip, is_staff, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.helper.Exec(ctx, query,
		user.Username,
		user.PasswordHash,
		nullableString(user.Team),
		user.Position,
		nullableString(user.LastIP),
		user.IsStaff,
		user.IsActive,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

// GetUser retrieves a user by ID from the database
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserByUsername retrieves a user by username. Matching is case-insensitive.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanUser(row)
}

// UpdateLastIP records the client address seen at login. A nil ip clears it.
func (r *UserRepository) UpdateLastIP(ctx context.Context, id int64, ip *string, at time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE users SET last_ip = ?, updated_at = ? WHERE id = ?`,
		nullableString(ip), formatTime(at), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUsers returns all users ordered by username
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

// DeleteUser removes a user. Owned rows are removed by ON DELETE CASCADE.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		team, lastIP         sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&team,
		&user.Position,
		&lastIP,
		&user.IsStaff,
		&user.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, r.mapper.MapError(err)
	}

	user.Team = stringPtr(team)
	user.LastIP = stringPtr(lastIP)

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
