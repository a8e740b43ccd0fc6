package application

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   int64
	Username string
	Team     *string
	IsStaff  bool
}

// Teams lists the recognised team codes.
var Teams = []string{"IT", "HR", "SALES", "SUPPORT"}

// NormalizeTeam upper-cases a team code and reports whether it is recognised.
// An empty value means no team.
func NormalizeTeam(value string) (*string, bool) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if code == "" {
		return nil, true
	}
	for _, team := range Teams {
		if team == code {
			return &code, true
		}
	}
	return nil, false
}

// User represents a portal account exposed by the application services.
type User struct {
	ID        int64
	Username  string
	Team      *string
	Position  string
	LastIP    *string
	IsStaff   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal derives the request principal for the user.
func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Team: u.Team, IsStaff: u.IsStaff}
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
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

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Username    string
	Password    string
	Fingerprint string
	ClientIP    *string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// AttendanceRecord is one clock-in session. TimeOut is nil while open.
type AttendanceRecord struct {
	ID        int64
	UserID    int64
	Date      time.Time
	TimeIn    time.Time
	TimeOut   *time.Time
	IPAddress *string
}

// Open reports whether the session has not been clocked out.
func (r AttendanceRecord) Open() bool {
	return r.TimeOut == nil
}

// Worked returns the closed session length, or zero while open.
func (r AttendanceRecord) Worked() time.Duration {
	if r.TimeOut == nil {
		return 0
	}
	return r.TimeOut.Sub(r.TimeIn)
}

// AttendanceEntry pairs an attendance record with its owner for reports.
type AttendanceEntry struct {
	Record   AttendanceRecord
	Username string
	Team     *string
}

// LeaveType codes.
const (
	LeaveVacation  = "VL"
	LeaveSick      = "SL"
	LeaveEmergency = "EL"
	LeaveHoliday   = "HL"
)

// LeaveTypeOption describes a selectable leave type.
type LeaveTypeOption struct {
	Code  string
	Label string
}

// LeaveTypes lists the leave types in display order.
var LeaveTypes = []LeaveTypeOption{
	{Code: LeaveVacation, Label: "Vacation Leave"},
	{Code: LeaveSick, Label: "Sick Leave"},
	{Code: LeaveEmergency, Label: "Emergency Leave"},
	{Code: LeaveHoliday, Label: "Holiday Leave"},
}

// Leave statuses.
const (
	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

// LeaveOutcome is a staff decision on a pending leave request.
type LeaveOutcome string

const (
	LeaveApprove LeaveOutcome = "approve"
	LeaveReject  LeaveOutcome = "reject"
)

// LeaveInput captures caller provided leave request fields as submitted.
type LeaveInput struct {
	LeaveType string
	StartDate string
	EndDate   string
	Reason    string
}

// LeaveRequest represents a leave application.
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

// LeaveQuery narrows leave listings.
type LeaveQuery struct {
	UserID      *int64
	Status      *string
	NewestFirst bool
	Limit       int
	Offset      int
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

// PayrollQuery narrows payroll listings.
type PayrollQuery struct {
	UserID      *int64
	Approved    *bool
	NewestFirst bool
	Limit       int
	Offset      int
}

// Announcement represents a broadcast or team-targeted message.
type Announcement struct {
	ID         int64
	Title      string
	Content    string
	TargetTeam *string
	CreatedAt  time.Time
}
