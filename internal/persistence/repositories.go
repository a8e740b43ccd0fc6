package persistence

import (
	"context"
	"time"
)

// Page bounds a listing. A zero Limit means unbounded.
type Page struct {
	Limit  int
	Offset int
}

// UserRepository exposes operations on portal accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	UpdateLastIP(ctx context.Context, id int64, ip *string, at time.Time) error
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// AttendanceRepository stores clock-in sessions.
type AttendanceRepository interface {
	// OpenSession inserts record unless the user already has an open session.
	// The boolean reports whether a row was created.
	OpenSession(ctx context.Context, record AttendanceRecord) (AttendanceRecord, bool, error)
	// CloseOpenSession stamps time_out on the user's open session. The
	// boolean reports whether a session was closed.
	CloseOpenSession(ctx context.Context, userID int64, at time.Time) (AttendanceRecord, bool, error)
	GetOpenSession(ctx context.Context, userID int64) (AttendanceRecord, error)
	ListForUser(ctx context.Context, userID int64, page Page) ([]AttendanceRecord, int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]AttendanceEntry, error)
}

// LeaveFilter narrows leave listings.
type LeaveFilter struct {
	UserID      *int64
	Status      *string
	NewestFirst bool
	Page        Page
}

// LeaveRepository stores leave requests.
type LeaveRepository interface {
	CreateLeave(ctx context.Context, leave LeaveRequest) (LeaveRequest, error)
	GetLeave(ctx context.Context, id int64) (LeaveRequest, error)
	ListLeaves(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int, error)
	// TransitionLeave moves a leave from one status to another. It returns
	// ErrConflict when the row exists but is no longer in status from.
	TransitionLeave(ctx context.Context, id int64, from, to string, decidedBy int64, at time.Time) (LeaveRequest, error)
}

// PayrollFilter narrows payroll listings.
type PayrollFilter struct {
	UserID      *int64
	Approved    *bool
	NewestFirst bool
	Page        Page
}

// PayrollRepository stores payroll figures.
type PayrollRepository interface {
	CreatePayroll(ctx context.Context, payroll PayrollRecord) (PayrollRecord, error)
	GetPayroll(ctx context.Context, id int64) (PayrollRecord, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int, error)
	ApprovePayroll(ctx context.Context, id int64, at time.Time) (PayrollRecord, error)
}

// AnnouncementFilter selects announcements addressed to everyone plus, when
// Team is set, those targeted at that team.
type AnnouncementFilter struct {
	Team  *string
	Limit int
}

// AnnouncementRepository stores announcements.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, announcement Announcement) (Announcement, error)
	ListAnnouncements(ctx context.Context, filter AnnouncementFilter) ([]Announcement, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
