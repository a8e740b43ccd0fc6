package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRepository captures the persistence operations for payroll records.
type PayrollRepository interface {
	CreatePayroll(ctx context.Context, payroll PayrollRecord) (PayrollRecord, error)
	GetPayroll(ctx context.Context, id int64) (PayrollRecord, error)
	ListPayrolls(ctx context.Context, query PayrollQuery) ([]PayrollRecord, int, error)
	ApprovePayroll(ctx context.Context, id int64, at time.Time) (PayrollRecord, error)
}

// PayrollInput carries staff-entered payroll figures as decimal strings.
// Empty deductions and bonuses default to zero.
type PayrollInput struct {
	UserID     int64
	Month      int
	Year       int
	BaseSalary string
	Deductions string
	Bonuses    string
	NetPay     string
}

// Payroll years accepted by Record.
const (
	minPayrollYear = 1900
	maxPayrollYear = 9999
)

// PayrollService gates payroll visibility behind staff approval.
type PayrollService struct {
	payrolls PayrollRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewPayrollService wires the payroll service.
func NewPayrollService(payrolls PayrollRepository, now func() time.Time, logger *slog.Logger) *PayrollService {
	if now == nil {
		now = time.Now
	}
	return &PayrollService{payrolls: payrolls, now: now, logger: defaultLogger(logger)}
}

// ListApproved returns one page of the caller's approved payrolls, latest
// period first.
func (s *PayrollService) ListApproved(ctx context.Context, principal Principal, page int) (Page[PayrollRecord], error) {
	if s == nil || s.payrolls == nil {
		return Page[PayrollRecord]{}, fmt.Errorf("payroll repository not configured")
	}
	userID := principal.UserID
	approved := true
	return paginate(ctx, page, PageSize, func(ctx context.Context, limit, offset int) ([]PayrollRecord, int, error) {
		return s.payrolls.ListPayrolls(ctx, PayrollQuery{
			UserID:      &userID,
			Approved:    &approved,
			NewestFirst: true,
			Limit:       limit,
			Offset:      offset,
		})
	})
}

// Detail returns one of the caller's payrolls. Records owned by someone else
// and unapproved records are reported as ErrNotFound, except that staff see
// their own unapproved records.
func (s *PayrollService) Detail(ctx context.Context, principal Principal, payrollID int64) (PayrollRecord, error) {
	if s == nil || s.payrolls == nil {
		return PayrollRecord{}, fmt.Errorf("payroll repository not configured")
	}
	payroll, err := s.payrolls.GetPayroll(ctx, payrollID)
	if err != nil {
		return PayrollRecord{}, err
	}
	if payroll.UserID != principal.UserID {
		return PayrollRecord{}, ErrNotFound
	}
	if !payroll.IsApproved && !principal.IsStaff {
		return PayrollRecord{}, ErrNotFound
	}
	return payroll, nil
}

// ListUnapproved returns every payroll awaiting approval, earliest period
// first. Only staff may review the queue.
func (s *PayrollService) ListUnapproved(ctx context.Context, principal Principal) ([]PayrollRecord, error) {
	if s == nil || s.payrolls == nil {
		return nil, fmt.Errorf("payroll repository not configured")
	}
	if !principal.IsStaff {
		return nil, ErrUnauthorized
	}
	approved := false
	payrolls, _, err := s.payrolls.ListPayrolls(ctx, PayrollQuery{Approved: &approved})
	if err != nil {
		return nil, err
	}
	if payrolls == nil {
		payrolls = []PayrollRecord{}
	}
	return payrolls, nil
}

// Approve marks a payroll approved. Approving an approved record is a no-op.
func (s *PayrollService) Approve(ctx context.Context, principal Principal, payrollID int64) (payroll PayrollRecord, err error) {
	if s == nil || s.payrolls == nil {
		err = fmt.Errorf("payroll repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PayrollService", "Approve",
		"principal_id", principal.UserID,
		"payroll_id", payrollID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "payroll approval")
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}

	payroll, err = s.payrolls.ApprovePayroll(ctx, payrollID, s.now().UTC())
	return
}

// Record stores staff-entered figures as an unapproved payroll.
func (s *PayrollService) Record(ctx context.Context, principal Principal, input PayrollInput) (payroll PayrollRecord, err error) {
	if s == nil || s.payrolls == nil {
		err = fmt.Errorf("payroll repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PayrollService", "Record",
		"principal_id", principal.UserID,
		"user_id", input.UserID,
		"period", fmt.Sprintf("%04d-%02d", input.Year, input.Month),
	)
	defer func() {
		logOutcome(ctx, logger, err, "payroll record", "payroll_id", payroll.ID)
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if input.UserID <= 0 {
		vErr.add("user_id", "user is required")
	}
	if input.Month < 1 || input.Month > 12 {
		vErr.add("month", "month must be between 1 and 12")
	}
	if input.Year < minPayrollYear || input.Year > maxPayrollYear {
		vErr.add("year", fmt.Sprintf("year must be between %d and %d", minPayrollYear, maxPayrollYear))
	}
	candidate := PayrollRecord{
		UserID:      input.UserID,
		Month:       input.Month,
		Year:        input.Year,
		BaseSalary:  parseAmount(vErr, "base_salary", input.BaseSalary, false),
		Deductions:  parseAmount(vErr, "deductions", input.Deductions, true),
		Bonuses:     parseAmount(vErr, "bonuses", input.Bonuses, true),
		NetPay:      parseAmount(vErr, "net_pay", input.NetPay, false),
		GeneratedAt: s.now().UTC(),
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	payroll, err = s.payrolls.CreatePayroll(ctx, candidate)
	if errors.Is(err, ErrNotFound) {
		err = &ValidationError{FieldErrors: map[string]string{"user_id": "user does not exist"}}
	}
	return
}

// parseAmount reads a money value with at most two fractional digits.
func parseAmount(vErr *ValidationError, field, value string, optional bool) decimal.Decimal {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if !optional {
			vErr.add(field, "amount is required")
		}
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		vErr.add(field, "enter a number")
		return decimal.Zero
	}
	if !amount.Equal(amount.Round(2)) {
		vErr.add(field, "ensure that there are no more than 2 decimal places")
		return decimal.Zero
	}
	if amount.Abs().GreaterThanOrEqual(decimal.New(1, 8)) {
		vErr.add(field, "ensure that there are no more than 10 digits in total")
		return decimal.Zero
	}
	return amount
}
