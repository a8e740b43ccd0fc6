package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/bpo-portal/internal/persistence"
)

const attendanceColumns = `a.id, a.user_id, a.date, a.time_in, a.time_out, a.ip_address`

// AttendanceRepository implements persistence.AttendanceRepository using SQLite
type AttendanceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAttendanceRepository creates a new SQLite attendance repository
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// OpenSession inserts record unless the user already has an open session, in
// which case the open session is returned with created = false. The partial
// unique index on open sessions backs the check when two writers race.
func (r *AttendanceRepository) OpenSession(ctx context.Context, record persistence.AttendanceRecord) (persistence.AttendanceRecord, bool, error) {
	if record.UserID == 0 || record.TimeIn.IsZero() {
		return persistence.AttendanceRecord{}, false, persistence.ErrConstraintViolation
	}

	var (
		result  persistence.AttendanceRecord
		created bool
	)
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := r.findOpen(ctx, tx, record.UserID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (user_id, date, time_in, time_out, ip_address)
			VALUES (?, ?, ?, NULL, ?)
		`,
			record.UserID,
			formatDate(record.Date),
			formatTime(record.TimeIn),
			nullableString(record.IPAddress),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read attendance id: %w", err)
		}

		result = record
		result.ID = id
		result.TimeIn = record.TimeIn.UTC()
		result.TimeOut = nil
		created = true
		return nil
	})

	if errors.Is(err, persistence.ErrDuplicate) {
		existing, getErr := r.GetOpenSession(ctx, record.UserID)
		if getErr != nil {
			return persistence.AttendanceRecord{}, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return persistence.AttendanceRecord{}, false, err
	}
	return result, created, nil
}

// CloseOpenSession stamps time_out on the user's most recently opened open
// session. A clock running behind time_in is clamped to time_in.
func (r *AttendanceRepository) CloseOpenSession(ctx context.Context, userID int64, at time.Time) (persistence.AttendanceRecord, bool, error) {
	var (
		result persistence.AttendanceRecord
		closed bool
	)
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		open, err := r.findOpen(ctx, tx, userID)
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		timeOut := at.UTC()
		if timeOut.Before(open.TimeIn) {
			timeOut = open.TimeIn
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE attendance_records SET time_out = ? WHERE id = ? AND time_out IS NULL`,
			formatTime(timeOut), open.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil
		}

		open.TimeOut = &timeOut
		result = open
		closed = true
		return nil
	})
	if err != nil {
		return persistence.AttendanceRecord{}, false, err
	}
	return result, closed, nil
}

// GetOpenSession returns the user's open session or persistence.ErrNotFound
func (r *AttendanceRepository) GetOpenSession(ctx context.Context, userID int64) (persistence.AttendanceRecord, error) {
	return r.findOpen(ctx, r.pool.DB(), userID)
}

// ListForUser returns the user's records newest first with the total count
func (r *AttendanceRepository) ListForUser(ctx context.Context, userID int64, page persistence.Page) ([]persistence.AttendanceRecord, int, error) {
	total, err := r.helper.Count(ctx, r.pool.DB(), `SELECT COUNT(*) FROM attendance_records WHERE user_id = ?`, userID)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	limit, limitArgs := limitClause(page.Limit, page.Offset)
	args := append([]any{userID}, limitArgs...)
	rows, err := r.helper.Query(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records a WHERE a.user_id = ? ORDER BY a.time_in DESC, a.id DESC`+limit,
		args...,
	)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	return records, total, nil
}

// ListBetween returns every record with time_in in [from, to) joined with
// its owner, ordered by time_in.
func (r *AttendanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]persistence.AttendanceEntry, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+attendanceColumns+`, u.username, u.team
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.time_in >= ? AND a.time_in < ?
		ORDER BY a.time_in ASC, a.id ASC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.AttendanceEntry
	for rows.Next() {
		var (
			entry   persistence.AttendanceEntry
			team    sql.NullString
			timeOut sql.NullString
			ip      sql.NullString
			date    string
			timeIn  string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &date, &timeIn, &timeOut, &ip, &entry.Username, &team); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := decodeAttendance(&entry.AttendanceRecord, date, timeIn, timeOut, ip); err != nil {
			return nil, err
		}
		entry.Team = stringPtr(team)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

func (r *AttendanceRepository) findOpen(ctx context.Context, q querier, userID int64) (persistence.AttendanceRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		WHERE a.user_id = ? AND a.time_out IS NULL
		ORDER BY a.time_in DESC, a.id DESC
		LIMIT 1
	`, userID)
	return r.scanRecord(row)
}

func (r *AttendanceRepository) scanRecord(row rowScanner) (persistence.AttendanceRecord, error) {
	var (
		record       persistence.AttendanceRecord
		date, timeIn string
		timeOut, ip  sql.NullString
	)
	if err := row.Scan(&record.ID, &record.UserID, &date, &timeIn, &timeOut, &ip); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AttendanceRecord{}, persistence.ErrNotFound
		}
		return persistence.AttendanceRecord{}, r.mapper.MapError(err)
	}
	if err := decodeAttendance(&record, date, timeIn, timeOut, ip); err != nil {
		return persistence.AttendanceRecord{}, err
	}
	return record, nil
}

func decodeAttendance(record *persistence.AttendanceRecord, date, timeIn string, timeOut, ip sql.NullString) error {
	var err error
	if record.Date, err = parseDate(date); err != nil {
		return err
	}
	if record.TimeIn, err = parseTime(timeIn); err != nil {
		return err
	}
	if record.TimeOut, err = parseNullableTime(timeOut); err != nil {
		return err
	}
	record.IPAddress = stringPtr(ip)
	return nil
}
