package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// plainVerifier compares passwords verbatim so tests avoid hashing cost.
func plainVerifier(hashedPassword, password string) error {
	if hashedPassword != password {
		return ErrInvalidCredentials
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

// credentialStoreStub implements CredentialStore for tests.
type credentialStoreStub struct {
	credentials UserCredentials
	err         error
	updateErr   error

	lastIPCalls []lastIPCall
}

type lastIPCall struct {
	id int64
	ip *string
	at time.Time
}

func (c *credentialStoreStub) GetUserCredentialsByUsername(ctx context.Context, username string) (UserCredentials, error) {
	if c.err != nil {
		return UserCredentials{}, c.err
	}
	if c.credentials.User.ID == 0 || !strings.EqualFold(c.credentials.User.Username, username) {
		return UserCredentials{}, ErrNotFound
	}
	return c.credentials, nil
}

func (c *credentialStoreStub) GetUser(ctx context.Context, id int64) (User, error) {
	if c.err != nil {
		return User{}, c.err
	}
	if c.credentials.User.ID == id {
		return c.credentials.User, nil
	}
	return User{}, ErrNotFound
}

func (c *credentialStoreStub) UpdateLastIP(ctx context.Context, id int64, ip *string, at time.Time) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.lastIPCalls = append(c.lastIPCalls, lastIPCall{id: id, ip: ip, at: at})
	c.credentials.User.LastIP = ip
	return nil
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	sessionsByID map[string]Session
	tokenToID    map[string]string

	createErr error
	getErr    error
	revokeErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{
		sessionsByID: make(map[string]Session),
		tokenToID:    make(map[string]string),
	}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.sessionsByID[session.ID] = cloneSession(session)
	s.tokenToID[session.Token] = session.ID
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.seed(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(s.sessionsByID[id]), nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session := s.sessionsByID[id]
	if session.RevokedAt == nil {
		revoked := revokedAt.UTC()
		session.RevokedAt = &revoked
		session.UpdatedAt = revoked
	}
	s.sessionsByID[id] = session
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	cutoff := reference.UTC()
	s.deleteCalls = append(s.deleteCalls, cutoff)
	for id, session := range s.sessionsByID {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessionsByID, id)
			delete(s.tokenToID, session.Token)
		}
	}
	return nil
}

func cloneSession(session Session) Session {
	clone := session
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		clone.RevokedAt = &revoked
	}
	return clone
}

// userRepositoryStub implements UserRepository over a slice.
type userRepositoryStub struct {
	users     []UserCredentials
	createErr error
}

func (u *userRepositoryStub) CreateUser(ctx context.Context, user UserCredentials) (User, error) {
	if u.createErr != nil {
		return User{}, u.createErr
	}
	for _, existing := range u.users {
		if strings.EqualFold(existing.User.Username, user.User.Username) {
			return User{}, ErrAlreadyExists
		}
	}
	user.User.ID = int64(len(u.users) + 1)
	u.users = append(u.users, user)
	return user.User, nil
}

func (u *userRepositoryStub) GetUser(ctx context.Context, id int64) (User, error) {
	for _, existing := range u.users {
		if existing.User.ID == id {
			return existing.User, nil
		}
	}
	return User{}, ErrNotFound
}

func (u *userRepositoryStub) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(u.users))
	for _, existing := range u.users {
		out = append(out, existing.User)
	}
	return out, nil
}

// attendanceRepositoryStub mirrors the store's open-session rules in memory.
type attendanceRepositoryStub struct {
	mu      sync.Mutex
	records []AttendanceRecord
	err     error

	betweenFrom, betweenTo time.Time
}

func (a *attendanceRepositoryStub) OpenSession(ctx context.Context, record AttendanceRecord) (AttendanceRecord, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return AttendanceRecord{}, false, a.err
	}
	if open, ok := a.findOpenLocked(record.UserID); ok {
		return open, false, nil
	}
	record.ID = int64(len(a.records) + 1)
	a.records = append(a.records, record)
	return record, true, nil
}

func (a *attendanceRepositoryStub) CloseOpenSession(ctx context.Context, userID int64, at time.Time) (AttendanceRecord, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return AttendanceRecord{}, false, a.err
	}
	open, ok := a.findOpenLocked(userID)
	if !ok {
		return AttendanceRecord{}, false, nil
	}
	if at.Before(open.TimeIn) {
		at = open.TimeIn
	}
	for i := range a.records {
		if a.records[i].ID == open.ID {
			a.records[i].TimeOut = &at
			return a.records[i], true, nil
		}
	}
	return AttendanceRecord{}, false, nil
}

func (a *attendanceRepositoryStub) GetOpenSession(ctx context.Context, userID int64) (AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return AttendanceRecord{}, a.err
	}
	if open, ok := a.findOpenLocked(userID); ok {
		return open, nil
	}
	return AttendanceRecord{}, ErrNotFound
}

func (a *attendanceRepositoryStub) ListAttendance(ctx context.Context, userID int64, limit, offset int) ([]AttendanceRecord, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var mine []AttendanceRecord
	for _, record := range a.records {
		if record.UserID == userID {
			mine = append(mine, record)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].TimeIn.After(mine[j].TimeIn) })
	return window(mine, limit, offset), len(mine), nil
}

func (a *attendanceRepositoryStub) ListAttendanceBetween(ctx context.Context, from, to time.Time) ([]AttendanceEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.betweenFrom, a.betweenTo = from, to
	var entries []AttendanceEntry
	for _, record := range a.records {
		if !record.TimeIn.Before(from) && record.TimeIn.Before(to) {
			entries = append(entries, AttendanceEntry{Record: record})
		}
	}
	return entries, nil
}

func (a *attendanceRepositoryStub) findOpenLocked(userID int64) (AttendanceRecord, bool) {
	var (
		found AttendanceRecord
		ok    bool
	)
	for _, record := range a.records {
		if record.UserID == userID && record.TimeOut == nil {
			if !ok || record.TimeIn.After(found.TimeIn) {
				found, ok = record, true
			}
		}
	}
	return found, ok
}

// leaveRepositoryStub keeps leave requests in creation order.
type leaveRepositoryStub struct {
	leaves []LeaveRequest
	err    error

	transitions int
}

func (l *leaveRepositoryStub) CreateLeave(ctx context.Context, leave LeaveRequest) (LeaveRequest, error) {
	if l.err != nil {
		return LeaveRequest{}, l.err
	}
	leave.ID = int64(len(l.leaves) + 1)
	l.leaves = append(l.leaves, leave)
	return leave, nil
}

func (l *leaveRepositoryStub) ListLeaves(ctx context.Context, query LeaveQuery) ([]LeaveRequest, int, error) {
	if l.err != nil {
		return nil, 0, l.err
	}
	var matched []LeaveRequest
	for _, leave := range l.leaves {
		if query.UserID != nil && leave.UserID != *query.UserID {
			continue
		}
		if query.Status != nil && leave.Status != *query.Status {
			continue
		}
		matched = append(matched, leave)
	}
	if query.NewestFirst {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	return window(matched, query.Limit, query.Offset), len(matched), nil
}

func (l *leaveRepositoryStub) TransitionLeave(ctx context.Context, id int64, from, to string, decidedBy int64, at time.Time) (LeaveRequest, error) {
	l.transitions++
	for i := range l.leaves {
		if l.leaves[i].ID != id {
			continue
		}
		if l.leaves[i].Status != from {
			return LeaveRequest{}, ErrAlreadyDecided
		}
		l.leaves[i].Status = to
		l.leaves[i].DecidedAt = &at
		l.leaves[i].DecidedBy = &decidedBy
		return l.leaves[i], nil
	}
	return LeaveRequest{}, ErrNotFound
}

// payrollRepositoryStub keeps payroll records in insertion order.
type payrollRepositoryStub struct {
	payrolls []PayrollRecord
	approves int
}

func (p *payrollRepositoryStub) CreatePayroll(ctx context.Context, payroll PayrollRecord) (PayrollRecord, error) {
	payroll.ID = int64(len(p.payrolls) + 1)
	p.payrolls = append(p.payrolls, payroll)
	return payroll, nil
}

func (p *payrollRepositoryStub) GetPayroll(ctx context.Context, id int64) (PayrollRecord, error) {
	for _, payroll := range p.payrolls {
		if payroll.ID == id {
			return payroll, nil
		}
	}
	return PayrollRecord{}, ErrNotFound
}

func (p *payrollRepositoryStub) ListPayrolls(ctx context.Context, query PayrollQuery) ([]PayrollRecord, int, error) {
	var matched []PayrollRecord
	for _, payroll := range p.payrolls {
		if query.UserID != nil && payroll.UserID != *query.UserID {
			continue
		}
		if query.Approved != nil && payroll.IsApproved != *query.Approved {
			continue
		}
		matched = append(matched, payroll)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Year*12+matched[i].Month, matched[j].Year*12+matched[j].Month
		if query.NewestFirst {
			return a > b
		}
		return a < b
	})
	return window(matched, query.Limit, query.Offset), len(matched), nil
}

func (p *payrollRepositoryStub) ApprovePayroll(ctx context.Context, id int64, at time.Time) (PayrollRecord, error) {
	p.approves++
	for i := range p.payrolls {
		if p.payrolls[i].ID == id {
			if !p.payrolls[i].IsApproved {
				p.payrolls[i].IsApproved = true
				p.payrolls[i].ApprovedAt = &at
			}
			return p.payrolls[i], nil
		}
	}
	return PayrollRecord{}, ErrNotFound
}

// announcementRepositoryStub stores announcements oldest first.
type announcementRepositoryStub struct {
	announcements []Announcement
}

func (a *announcementRepositoryStub) CreateAnnouncement(ctx context.Context, announcement Announcement) (Announcement, error) {
	announcement.ID = int64(len(a.announcements) + 1)
	a.announcements = append(a.announcements, announcement)
	return announcement, nil
}

func (a *announcementRepositoryStub) ListAnnouncements(ctx context.Context, team *string, limit int) ([]Announcement, error) {
	var out []Announcement
	for i := len(a.announcements) - 1; i >= 0; i-- {
		announcement := a.announcements[i]
		if announcement.TargetTeam != nil && (team == nil || *announcement.TargetTeam != *team) {
			continue
		}
		out = append(out, announcement)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
