package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/persistence"
)

var (
	_ application.CredentialStore        = (*credentialStoreAdapter)(nil)
	_ application.UserRepository         = (*userRepositoryAdapter)(nil)
	_ application.SessionRepository      = (*sessionRepositoryAdapter)(nil)
	_ application.AttendanceRepository   = (*attendanceRepositoryAdapter)(nil)
	_ application.LeaveRepository        = (*leaveRepositoryAdapter)(nil)
	_ application.PayrollRepository      = (*payrollRepositoryAdapter)(nil)
	_ application.AnnouncementRepository = (*announcementRepositoryAdapter)(nil)
)

// translateError maps storage sentinels onto the application sentinels the
// services branch on. The original error stays in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %w", application.ErrAlreadyExists, err)
	case errors.Is(err, persistence.ErrConflict):
		return fmt.Errorf("%w: %w", application.ErrAlreadyDecided, err)
	}
	return err
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	model, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, translateError(err)
	}
	return application.UserCredentials{User: toApplicationUser(model), PasswordHash: model.PasswordHash}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id int64) (application.User, error) {
	model, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, translateError(err)
	}
	return toApplicationUser(model), nil
}

func (a *credentialStoreAdapter) UpdateLastIP(ctx context.Context, id int64, ip *string, at time.Time) error {
	return translateError(a.repo.UpdateLastIP(ctx, id, ip, at))
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	model := toPersistenceUser(creds.User)
	model.PasswordHash = creds.PasswordHash
	stored, err := a.repo.CreateUser(ctx, model)
	if err != nil {
		return application.User{}, translateError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id int64) (application.User, error) {
	model, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, translateError(err)
	}
	return toApplicationUser(model), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return translateError(a.repo.DeleteExpiredSessions(ctx, reference))
}

type attendanceRepositoryAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceRepositoryAdapter(repo persistence.AttendanceRepository) *attendanceRepositoryAdapter {
	return &attendanceRepositoryAdapter{repo: repo}
}

func (a *attendanceRepositoryAdapter) OpenSession(ctx context.Context, record application.AttendanceRecord) (application.AttendanceRecord, bool, error) {
	stored, created, err := a.repo.OpenSession(ctx, persistence.AttendanceRecord(record))
	if err != nil {
		return application.AttendanceRecord{}, false, translateError(err)
	}
	return application.AttendanceRecord(stored), created, nil
}

func (a *attendanceRepositoryAdapter) CloseOpenSession(ctx context.Context, userID int64, at time.Time) (application.AttendanceRecord, bool, error) {
	stored, closed, err := a.repo.CloseOpenSession(ctx, userID, at)
	if err != nil {
		return application.AttendanceRecord{}, false, translateError(err)
	}
	return application.AttendanceRecord(stored), closed, nil
}

func (a *attendanceRepositoryAdapter) GetOpenSession(ctx context.Context, userID int64) (application.AttendanceRecord, error) {
	stored, err := a.repo.GetOpenSession(ctx, userID)
	if err != nil {
		return application.AttendanceRecord{}, translateError(err)
	}
	return application.AttendanceRecord(stored), nil
}

func (a *attendanceRepositoryAdapter) ListAttendance(ctx context.Context, userID int64, limit, offset int) ([]application.AttendanceRecord, int, error) {
	models, total, err := a.repo.ListForUser(ctx, userID, persistence.Page{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, translateError(err)
	}
	records := make([]application.AttendanceRecord, 0, len(models))
	for _, model := range models {
		records = append(records, application.AttendanceRecord(model))
	}
	return records, total, nil
}

func (a *attendanceRepositoryAdapter) ListAttendanceBetween(ctx context.Context, from, to time.Time) ([]application.AttendanceEntry, error) {
	models, err := a.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, translateError(err)
	}
	entries := make([]application.AttendanceEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, application.AttendanceEntry{
			Record:   application.AttendanceRecord(model.AttendanceRecord),
			Username: model.Username,
			Team:     cloneString(model.Team),
		})
	}
	return entries, nil
}

type leaveRepositoryAdapter struct {
	repo persistence.LeaveRepository
}

func newLeaveRepositoryAdapter(repo persistence.LeaveRepository) *leaveRepositoryAdapter {
	return &leaveRepositoryAdapter{repo: repo}
}

func (a *leaveRepositoryAdapter) CreateLeave(ctx context.Context, leave application.LeaveRequest) (application.LeaveRequest, error) {
	stored, err := a.repo.CreateLeave(ctx, persistence.LeaveRequest(leave))
	if err != nil {
		return application.LeaveRequest{}, translateError(err)
	}
	return application.LeaveRequest(stored), nil
}

func (a *leaveRepositoryAdapter) ListLeaves(ctx context.Context, query application.LeaveQuery) ([]application.LeaveRequest, int, error) {
	models, total, err := a.repo.ListLeaves(ctx, persistence.LeaveFilter{
		UserID:      query.UserID,
		Status:      query.Status,
		NewestFirst: query.NewestFirst,
		Page:        persistence.Page{Limit: query.Limit, Offset: query.Offset},
	})
	if err != nil {
		return nil, 0, translateError(err)
	}
	leaves := make([]application.LeaveRequest, 0, len(models))
	for _, model := range models {
		leaves = append(leaves, application.LeaveRequest(model))
	}
	return leaves, total, nil
}

func (a *leaveRepositoryAdapter) TransitionLeave(ctx context.Context, id int64, from, to string, decidedBy int64, at time.Time) (application.LeaveRequest, error) {
	stored, err := a.repo.TransitionLeave(ctx, id, from, to, decidedBy, at)
	if err != nil {
		return application.LeaveRequest{}, translateError(err)
	}
	return application.LeaveRequest(stored), nil
}

type payrollRepositoryAdapter struct {
	repo persistence.PayrollRepository
}

func newPayrollRepositoryAdapter(repo persistence.PayrollRepository) *payrollRepositoryAdapter {
	return &payrollRepositoryAdapter{repo: repo}
}

func (a *payrollRepositoryAdapter) CreatePayroll(ctx context.Context, payroll application.PayrollRecord) (application.PayrollRecord, error) {
	stored, err := a.repo.CreatePayroll(ctx, persistence.PayrollRecord(payroll))
	if err != nil {
		return application.PayrollRecord{}, translateError(err)
	}
	return application.PayrollRecord(stored), nil
}

func (a *payrollRepositoryAdapter) GetPayroll(ctx context.Context, id int64) (application.PayrollRecord, error) {
	stored, err := a.repo.GetPayroll(ctx, id)
	if err != nil {
		return application.PayrollRecord{}, translateError(err)
	}
	return application.PayrollRecord(stored), nil
}

func (a *payrollRepositoryAdapter) ListPayrolls(ctx context.Context, query application.PayrollQuery) ([]application.PayrollRecord, int, error) {
	models, total, err := a.repo.ListPayrolls(ctx, persistence.PayrollFilter{
		UserID:      query.UserID,
		Approved:    query.Approved,
		NewestFirst: query.NewestFirst,
		Page:        persistence.Page{Limit: query.Limit, Offset: query.Offset},
	})
	if err != nil {
		return nil, 0, translateError(err)
	}
	payrolls := make([]application.PayrollRecord, 0, len(models))
	for _, model := range models {
		payrolls = append(payrolls, application.PayrollRecord(model))
	}
	return payrolls, total, nil
}

func (a *payrollRepositoryAdapter) ApprovePayroll(ctx context.Context, id int64, at time.Time) (application.PayrollRecord, error) {
	stored, err := a.repo.ApprovePayroll(ctx, id, at)
	if err != nil {
		return application.PayrollRecord{}, translateError(err)
	}
	return application.PayrollRecord(stored), nil
}

type announcementRepositoryAdapter struct {
	repo persistence.AnnouncementRepository
}

func newAnnouncementRepositoryAdapter(repo persistence.AnnouncementRepository) *announcementRepositoryAdapter {
	return &announcementRepositoryAdapter{repo: repo}
}

func (a *announcementRepositoryAdapter) CreateAnnouncement(ctx context.Context, announcement application.Announcement) (application.Announcement, error) {
	stored, err := a.repo.CreateAnnouncement(ctx, persistence.Announcement(announcement))
	if err != nil {
		return application.Announcement{}, translateError(err)
	}
	return application.Announcement(stored), nil
}

func (a *announcementRepositoryAdapter) ListAnnouncements(ctx context.Context, team *string, limit int) ([]application.Announcement, error) {
	models, err := a.repo.ListAnnouncements(ctx, persistence.AnnouncementFilter{Team: team, Limit: limit})
	if err != nil {
		return nil, translateError(err)
	}
	announcements := make([]application.Announcement, 0, len(models))
	for _, model := range models {
		announcements = append(announcements, application.Announcement(model))
	}
	return announcements, nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Username:  model.Username,
		Team:      cloneString(model.Team),
		Position:  model.Position,
		LastIP:    cloneString(model.LastIP),
		IsStaff:   model.IsStaff,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		ID:        user.ID,
		Username:  user.Username,
		Team:      cloneString(user.Team),
		Position:  user.Position,
		LastIP:    cloneString(user.LastIP),
		IsStaff:   user.IsStaff,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session(model)
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session(session)
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
