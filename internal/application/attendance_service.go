package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// AttendanceRepository captures the persistence operations for clock-in sessions.
type AttendanceRepository interface {
	// OpenSession stores record unless the user already has an open session,
	// in which case the open session is returned with created false.
	OpenSession(ctx context.Context, record AttendanceRecord) (AttendanceRecord, bool, error)
	// CloseOpenSession stamps time_out on the user's most recent open session.
	CloseOpenSession(ctx context.Context, userID int64, at time.Time) (AttendanceRecord, bool, error)
	GetOpenSession(ctx context.Context, userID int64) (AttendanceRecord, error)
	ListAttendance(ctx context.Context, userID int64, limit, offset int) ([]AttendanceRecord, int, error)
	ListAttendanceBetween(ctx context.Context, from, to time.Time) ([]AttendanceEntry, error)
}

// AttendanceService tracks the per-user open clock-in session.
type AttendanceService struct {
	records  AttendanceRepository
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewAttendanceService wires the attendance service. Calendar dates are taken
// in location, which defaults to UTC.
func NewAttendanceService(records AttendanceRepository, location *time.Location, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{records: records, location: location, now: now, logger: defaultLogger(logger)}
}

// Location returns the zone used for attendance calendar dates.
func (s *AttendanceService) Location() *time.Location {
	return s.location
}

// Today returns midnight of the current calendar date in the service location.
func (s *AttendanceService) Today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

// ClockIn opens a session for the caller. When a session is already open it
// is returned unchanged and created is false.
func (s *AttendanceService) ClockIn(ctx context.Context, principal Principal, sourceIP *string) (record AttendanceRecord, created bool, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("attendance repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AttendanceService", "ClockIn", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "clock in", "record_id", record.ID, "created", created)
	}()

	now := s.now()
	record, created, err = s.records.OpenSession(ctx, AttendanceRecord{
		UserID:    principal.UserID,
		Date:      calendarDate(now, s.location),
		TimeIn:    now.UTC(),
		IPAddress: sourceIP,
	})
	return
}

// ClockOut closes the caller's open session. closed is false when no session
// was open.
func (s *AttendanceService) ClockOut(ctx context.Context, principal Principal) (record AttendanceRecord, closed bool, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("attendance repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AttendanceService", "ClockOut", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "clock out", "record_id", record.ID, "closed", closed)
	}()

	record, closed, err = s.records.CloseOpenSession(ctx, principal.UserID, s.now().UTC())
	return
}

// CurrentSession returns the caller's open session, or nil when none is open.
func (s *AttendanceService) CurrentSession(ctx context.Context, principal Principal) (*AttendanceRecord, error) {
	if s == nil || s.records == nil {
		return nil, fmt.Errorf("attendance repository not configured")
	}
	record, err := s.records.GetOpenSession(ctx, principal.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns one page of the caller's records, newest first.
func (s *AttendanceService) History(ctx context.Context, principal Principal, page int) (Page[AttendanceRecord], error) {
	if s == nil || s.records == nil {
		return Page[AttendanceRecord]{}, fmt.Errorf("attendance repository not configured")
	}
	return paginate(ctx, page, PageSize, func(ctx context.Context, limit, offset int) ([]AttendanceRecord, int, error) {
		return s.records.ListAttendance(ctx, principal.UserID, limit, offset)
	})
}

// Export returns every record clocked in between the calendar dates from and
// to, both inclusive. Only staff may export.
func (s *AttendanceService) Export(ctx context.Context, principal Principal, from, to time.Time) (entries []AttendanceEntry, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("attendance repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AttendanceService", "Export",
		"principal_id", principal.UserID,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)
	defer func() {
		logOutcome(ctx, logger, err, "attendance export", "rows", len(entries))
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}
	if to.Before(from) {
		err = &ValidationError{FieldErrors: map[string]string{"to": "end date must not be before start date"}}
		return
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.location)
	end := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, s.location)
	entries, err = s.records.ListAttendanceBetween(ctx, start.UTC(), end.UTC())
	if entries == nil && err == nil {
		entries = []AttendanceEntry{}
	}
	return
}

// calendarDate returns the date of t in location as midnight UTC.
func calendarDate(t time.Time, location *time.Location) time.Time {
	local := t.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
