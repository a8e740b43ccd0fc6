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

const leaveColumns = `id, user_id, leave_type, start_date, end_date, reason, status, created_at, decided_at, decided_by`

// LeaveRepository implements persistence.LeaveRepository using SQLite
type LeaveRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLeaveRepository creates a new SQLite leave repository
func NewLeaveRepository(pool *ConnectionPool) *LeaveRepository {
	return &LeaveRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateLeave inserts a leave request. An empty status is stored as PENDING.
func (r *LeaveRepository) CreateLeave(ctx context.Context, leave persistence.LeaveRequest) (persistence.LeaveRequest, error) {
	if leave.UserID == 0 {
		return persistence.LeaveRequest{}, persistence.ErrConstraintViolation
	}
	if leave.Status == "" {
		leave.Status = "PENDING"
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now().UTC()
	}
	leave.CreatedAt = leave.CreatedAt.UTC()

	result, err := r.helper.Exec(ctx, `
		INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, reason, status, created_at, decided_at, decided_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		leave.UserID,
		leave.LeaveType,
		formatDate(leave.StartDate),
		formatDate(leave.EndDate),
		leave.Reason,
		leave.Status,
		formatTime(leave.CreatedAt),
		nullableTime(leave.DecidedAt),
		nullableInt64(leave.DecidedBy),
	)
	if err != nil {
		return persistence.LeaveRequest{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.LeaveRequest{}, fmt.Errorf("failed to read leave id: %w", err)
	}
	leave.ID = id
	return leave, nil
}

// GetLeave retrieves a leave request by id
func (r *LeaveRepository) GetLeave(ctx context.Context, id int64) (persistence.LeaveRequest, error) {
	return r.scanLeave(r.helper.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id))
}

// ListLeaves returns leave requests matching filter with the unpaged total
func (r *LeaveRepository) ListLeaves(ctx context.Context, filter persistence.LeaveFilter) ([]persistence.LeaveRequest, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.helper.Count(ctx, r.pool.DB(), `SELECT COUNT(*) FROM leave_requests`+where, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	order := " ORDER BY created_at ASC, id ASC"
	if filter.NewestFirst {
		order = " ORDER BY created_at DESC, id DESC"
	}
	limit, limitArgs := limitClause(filter.Page.Limit, filter.Page.Offset)

	rows, err := r.helper.Query(ctx, `SELECT `+leaveColumns+` FROM leave_requests`+where+order+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var leaves []persistence.LeaveRequest
	for rows.Next() {
		leave, err := r.scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		leaves = append(leaves, leave)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	return leaves, total, nil
}

// TransitionLeave moves a leave from status from to status to and records
// who decided it. It returns persistence.ErrConflict when the leave exists
// but is no longer in status from.
func (r *LeaveRepository) TransitionLeave(ctx context.Context, id int64, from, to string, decidedBy int64, at time.Time) (persistence.LeaveRequest, error) {
	var updated persistence.LeaveRequest
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE leave_requests SET status = ?, decided_at = ?, decided_by = ? WHERE id = ? AND status = ?`,
			to, formatTime(at), decidedBy, id, from,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		current, err := r.scanLeave(tx.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id))
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return persistence.ErrConflict
		}
		updated = current
		return nil
	})
	if err != nil {
		return persistence.LeaveRequest{}, err
	}
	return updated, nil
}

func (r *LeaveRepository) scanLeave(row rowScanner) (persistence.LeaveRequest, error) {
	var (
		leave                         persistence.LeaveRequest
		startDate, endDate, createdAt string
		decidedAt                     sql.NullString
		decidedBy                     sql.NullInt64
	)
	err := row.Scan(
		&leave.ID,
		&leave.UserID,
		&leave.LeaveType,
		&startDate,
		&endDate,
		&leave.Reason,
		&leave.Status,
		&createdAt,
		&decidedAt,
		&decidedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.LeaveRequest{}, persistence.ErrNotFound
		}
		return persistence.LeaveRequest{}, r.mapper.MapError(err)
	}

	if leave.StartDate, err = parseDate(startDate); err != nil {
		return persistence.LeaveRequest{}, err
	}
	if leave.EndDate, err = parseDate(endDate); err != nil {
		return persistence.LeaveRequest{}, err
	}
	if leave.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.LeaveRequest{}, err
	}
	if leave.DecidedAt, err = parseNullableTime(decidedAt); err != nil {
		return persistence.LeaveRequest{}, err
	}
	leave.DecidedBy = int64Ptr(decidedBy)
	return leave, nil
}
