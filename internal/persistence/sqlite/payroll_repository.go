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

const payrollColumns = `id, user_id, month, year, base_salary, deductions, bonuses, net_pay, is_approved, generated_at, approved_at`

// PayrollRepository implements persistence.PayrollRepository using SQLite
type PayrollRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPayrollRepository creates a new SQLite payroll repository
func NewPayrollRepository(pool *ConnectionPool) *PayrollRepository {
	return &PayrollRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreatePayroll inserts staff-entered payroll figures
func (r *PayrollRepository) CreatePayroll(ctx context.Context, payroll persistence.PayrollRecord) (persistence.PayrollRecord, error) {
	if payroll.UserID == 0 {
		return persistence.PayrollRecord{}, persistence.ErrConstraintViolation
	}
	if payroll.GeneratedAt.IsZero() {
		payroll.GeneratedAt = time.Now().UTC()
	}
	payroll.GeneratedAt = payroll.GeneratedAt.UTC()
	if payroll.IsApproved && payroll.ApprovedAt == nil {
		approvedAt := payroll.GeneratedAt
		payroll.ApprovedAt = &approvedAt
	}

	result, err := r.helper.Exec(ctx, `
		INSERT INTO payroll_records (user_id, month, year, base_salary, deductions, bonuses, net_pay, is_approved, generated_at, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		payroll.UserID,
		payroll.Month,
		payroll.Year,
		formatMoney(payroll.BaseSalary),
		formatMoney(payroll.Deductions),
		formatMoney(payroll.Bonuses),
		formatMoney(payroll.NetPay),
		payroll.IsApproved,
		formatTime(payroll.GeneratedAt),
		nullableTime(payroll.ApprovedAt),
	)
	if err != nil {
		return persistence.PayrollRecord{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.PayrollRecord{}, fmt.Errorf("failed to read payroll id: %w", err)
	}
	payroll.ID = id
	return payroll, nil
}

// GetPayroll retrieves a payroll record by id
func (r *PayrollRepository) GetPayroll(ctx context.Context, id int64) (persistence.PayrollRecord, error) {
	return r.scanPayroll(r.helper.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE id = ?`, id))
}

// ListPayrolls returns payroll records matching filter ordered by period,
// with the unpaged total.
func (r *PayrollRepository) ListPayrolls(ctx context.Context, filter persistence.PayrollFilter) ([]persistence.PayrollRecord, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Approved != nil {
		conditions = append(conditions, "is_approved = ?")
		args = append(args, *filter.Approved)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.helper.Count(ctx, r.pool.DB(), `SELECT COUNT(*) FROM payroll_records`+where, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	order := " ORDER BY year ASC, month ASC, id ASC"
	if filter.NewestFirst {
		order = " ORDER BY year DESC, month DESC, id DESC"
	}
	limit, limitArgs := limitClause(filter.Page.Limit, filter.Page.Offset)

	rows, err := r.helper.Query(ctx, `SELECT `+payrollColumns+` FROM payroll_records`+where+order+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var payrolls []persistence.PayrollRecord
	for rows.Next() {
		payroll, err := r.scanPayroll(rows)
		if err != nil {
			return nil, 0, err
		}
		payrolls = append(payrolls, payroll)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	return payrolls, total, nil
}

// ApprovePayroll marks the record approved. Approving twice keeps the first
// approval time.
func (r *PayrollRepository) ApprovePayroll(ctx context.Context, id int64, at time.Time) (persistence.PayrollRecord, error) {
	var approved persistence.PayrollRecord
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE payroll_records SET is_approved = 1, approved_at = COALESCE(approved_at, ?) WHERE id = ?`,
			formatTime(at), id,
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

		approved, err = r.scanPayroll(tx.QueryRowContext(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return persistence.PayrollRecord{}, err
	}
	return approved, nil
}

func (r *PayrollRepository) scanPayroll(row rowScanner) (persistence.PayrollRecord, error) {
	var (
		payroll                              persistence.PayrollRecord
		baseSalary, deductions, bonuses, net string
		generatedAt                          string
		approvedAt                           sql.NullString
	)
	err := row.Scan(
		&payroll.ID,
		&payroll.UserID,
		&payroll.Month,
		&payroll.Year,
		&baseSalary,
		&deductions,
		&bonuses,
		&net,
		&payroll.IsApproved,
		&generatedAt,
		&approvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.PayrollRecord{}, persistence.ErrNotFound
		}
		return persistence.PayrollRecord{}, r.mapper.MapError(err)
	}

	if payroll.BaseSalary, err = parseMoney(baseSalary); err != nil {
		return persistence.PayrollRecord{}, err
	}
	if payroll.Deductions, err = parseMoney(deductions); err != nil {
		return persistence.PayrollRecord{}, err
	}
	if payroll.Bonuses, err = parseMoney(bonuses); err != nil {
		return persistence.PayrollRecord{}, err
	}
	if payroll.NetPay, err = parseMoney(net); err != nil {
		return persistence.PayrollRecord{}, err
	}
	if payroll.GeneratedAt, err = parseTime(generatedAt); err != nil {
		return persistence.PayrollRecord{}, err
	}
	if payroll.ApprovedAt, err = parseNullableTime(approvedAt); err != nil {
		return persistence.PayrollRecord{}, err
	}
	return payroll, nil
}
