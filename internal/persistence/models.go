package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a portal account row.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Team         *string
	Position     string
	LastIP       *string
	IsStaff      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttendanceRecord represents one clock-in session. TimeOut is nil while the
// session is open.
type AttendanceRecord struct {
	ID        int64
	UserID    int64
	Date      time.Time
	TimeIn    time.Time
	TimeOut   *time.Time
	IPAddress *string
}

// AttendanceEntry joins an attendance record with the owning account for reports.
type AttendanceEntry struct {
	AttendanceRecord
	Username string
	Team     *string
}

// LeaveRequest represents a leave application row.
type LeaveRequest struct {
	ID        int64
	UserID    int64
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Status    string
	CreatedAt time.Time
	DecidedAt *time.Time
	DecidedBy *int64
}

// PayrollRecord represents staff-entered payroll figures for one month.
type PayrollRecord struct {
	ID          int64
	UserID      int64
	Month       int
	Year        int
	BaseSalary  decimal.Decimal
	Deductions  decimal.Decimal
	Bonuses     decimal.Decimal
	NetPay      decimal.Decimal
	IsApproved  bool
	GeneratedAt time.Time
	ApprovedAt  *time.Time
}

// Announcement represents a broadcast or team-targeted message.
type Announcement struct {
	ID         int64
	Title      string
	Content    string
	TargetTeam *string
	CreatedAt  time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID          string
	UserID      int64
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}
