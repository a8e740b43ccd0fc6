package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LeaveRepository captures the persistence operations for leave requests.
type LeaveRepository interface {
	CreateLeave(ctx context.Context, leave LeaveRequest) (LeaveRequest, error)
	ListLeaves(ctx context.Context, query LeaveQuery) ([]LeaveRequest, int, error)
	// TransitionLeave moves a leave out of status from. It returns
	// ErrAlreadyDecided when the leave has already left that status.
	TransitionLeave(ctx context.Context, id int64, from, to string, decidedBy int64, at time.Time) (LeaveRequest, error)
}

// LeaveService handles leave submission and the staff approval queue.
type LeaveService struct {
	leaves LeaveRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewLeaveService wires the leave service.
func NewLeaveService(leaves LeaveRepository, now func() time.Time, logger *slog.Logger) *LeaveService {
	if now == nil {
		now = time.Now
	}
	return &LeaveService{leaves: leaves, now: now, logger: defaultLogger(logger)}
}

// ParseLeaveType resolves a leave type code or name, ignoring case.
func ParseLeaveType(value string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, option := range LeaveTypes {
		label := strings.ToUpper(option.Label)
		if normalized == option.Code || normalized == label || normalized == strings.TrimSuffix(label, " LEAVE") {
			return option.Code, true
		}
	}
	return "", false
}

// Submit validates input and files a pending leave request for the caller.
func (s *LeaveService) Submit(ctx context.Context, principal Principal, input LeaveInput) (leave LeaveRequest, err error) {
	if s == nil || s.leaves == nil {
		err = fmt.Errorf("leave repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "LeaveService", "Submit", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "leave submission", "leave_id", leave.ID)
	}()

	candidate, vErr := validateLeaveInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate.UserID = principal.UserID
	candidate.Status = LeaveStatusPending
	candidate.CreatedAt = s.now().UTC()

	leave, err = s.leaves.CreateLeave(ctx, candidate)
	return
}

// ListMine returns one page of the caller's leave requests, newest first.
func (s *LeaveService) ListMine(ctx context.Context, principal Principal, page int) (Page[LeaveRequest], error) {
	if s == nil || s.leaves == nil {
		return Page[LeaveRequest]{}, fmt.Errorf("leave repository not configured")
	}
	userID := principal.UserID
	return paginate(ctx, page, PageSize, func(ctx context.Context, limit, offset int) ([]LeaveRequest, int, error) {
		return s.leaves.ListLeaves(ctx, LeaveQuery{UserID: &userID, NewestFirst: true, Limit: limit, Offset: offset})
	})
}

// ListPending returns every pending request, oldest first. Only staff may
// review the queue.
func (s *LeaveService) ListPending(ctx context.Context, principal Principal) ([]LeaveRequest, error) {
	if s == nil || s.leaves == nil {
		return nil, fmt.Errorf("leave repository not configured")
	}
	if !principal.IsStaff {
		return nil, ErrUnauthorized
	}
	status := LeaveStatusPending
	leaves, _, err := s.leaves.ListLeaves(ctx, LeaveQuery{Status: &status})
	if err != nil {
		return nil, err
	}
	if leaves == nil {
		leaves = []LeaveRequest{}
	}
	return leaves, nil
}

// Decide approves or rejects a pending request. Non-staff callers are refused
// before the request is looked up.
func (s *LeaveService) Decide(ctx context.Context, principal Principal, leaveID int64, outcome LeaveOutcome) (leave LeaveRequest, err error) {
	if s == nil || s.leaves == nil {
		err = fmt.Errorf("leave repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "LeaveService", "Decide",
		"principal_id", principal.UserID,
		"leave_id", leaveID,
		"outcome", string(outcome),
	)
	defer func() {
		logOutcome(ctx, logger, err, "leave decision", "status", leave.Status)
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}

	var target string
	switch outcome {
	case LeaveApprove:
		target = LeaveStatusApproved
	case LeaveReject:
		target = LeaveStatusRejected
	default:
		err = &ValidationError{FieldErrors: map[string]string{"outcome": "outcome must be approve or reject"}}
		return
	}

	leave, err = s.leaves.TransitionLeave(ctx, leaveID, LeaveStatusPending, target, principal.UserID, s.now().UTC())
	return
}

func validateLeaveInput(input LeaveInput) (LeaveRequest, *ValidationError) {
	vErr := &ValidationError{}
	var leave LeaveRequest

	if strings.TrimSpace(input.LeaveType) == "" {
		vErr.add("leave_type", "leave type is required")
	} else if code, ok := ParseLeaveType(input.LeaveType); ok {
		leave.LeaveType = code
	} else {
		vErr.add("leave_type", "select a valid leave type")
	}

	leave.StartDate = parseLeaveDate(vErr, "start_date", input.StartDate)
	leave.EndDate = parseLeaveDate(vErr, "end_date", input.EndDate)

	leave.Reason = strings.TrimSpace(input.Reason)
	if leave.Reason == "" {
		vErr.add("reason", "reason is required")
	}

	return leave, vErr
}

func parseLeaveDate(vErr *ValidationError, field, value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		vErr.add(field, "date is required")
		return time.Time{}
	}
	parsed, err := time.Parse(time.DateOnly, trimmed)
	if err != nil {
		vErr.add(field, "enter a valid date (YYYY-MM-DD)")
		return time.Time{}
	}
	return parsed
}
