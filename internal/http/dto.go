package http

import (
	"time"

	"github.com/example/bpo-portal/internal/application"
)

type pageDTO[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	Total       int  `json:"total"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func toPageDTO[S, T any](page application.Page[S], convert func(S) T) pageDTO[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return pageDTO[T]{
		Items:       items,
		Page:        page.Number,
		NumPages:    page.NumPages,
		Total:       page.Total,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
	}
}

func mapSlice[S, T any](values []S, convert func(S) T) []T {
	out := make([]T, 0, len(values))
	for _, value := range values {
		out = append(out, convert(value))
	}
	return out
}

type userDTO struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Team     *string `json:"team"`
	Position string  `json:"position"`
	LastIP   *string `json:"last_ip"`
	IsStaff  bool    `json:"is_staff"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{
		ID:       user.ID,
		Username: user.Username,
		Team:     user.Team,
		Position: user.Position,
		LastIP:   user.LastIP,
		IsStaff:  user.IsStaff,
	}
}

type attendanceDTO struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	TimeIn      string   `json:"time_in"`
	TimeOut     *string  `json:"time_out"`
	IPAddress   *string  `json:"ip_address"`
	HoursWorked *float64 `json:"hours_worked"`
}

func attendanceConverter(location *time.Location) func(application.AttendanceRecord) attendanceDTO {
	if location == nil {
		location = time.UTC
	}
	return func(record application.AttendanceRecord) attendanceDTO {
		dto := attendanceDTO{
			ID:        record.ID,
			Date:      record.Date.Format(time.DateOnly),
			TimeIn:    record.TimeIn.In(location).Format(time.RFC3339),
			IPAddress: record.IPAddress,
		}
		if record.TimeOut != nil {
			out := record.TimeOut.In(location).Format(time.RFC3339)
			hours := record.Worked().Hours()
			dto.TimeOut = &out
			dto.HoursWorked = &hours
		}
		return dto
	}
}

type leaveDTO struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	LeaveType string  `json:"leave_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Reason    string  `json:"reason"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	DecidedAt *string `json:"decided_at"`
	DecidedBy *int64  `json:"decided_by"`
}

func toLeaveDTO(leave application.LeaveRequest) leaveDTO {
	return leaveDTO{
		ID:        leave.ID,
		UserID:    leave.UserID,
		LeaveType: leave.LeaveType,
		StartDate: leave.StartDate.Format(time.DateOnly),
		EndDate:   leave.EndDate.Format(time.DateOnly),
		Reason:    leave.Reason,
		Status:    leave.Status,
		CreatedAt: leave.CreatedAt.UTC().Format(time.RFC3339),
		DecidedAt: formatOptionalTime(leave.DecidedAt),
		DecidedBy: leave.DecidedBy,
	}
}

type payrollDTO struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	BaseSalary  string  `json:"base_salary"`
	Deductions  string  `json:"deductions"`
	Bonuses     string  `json:"bonuses"`
	NetPay      string  `json:"net_pay"`
	IsApproved  bool    `json:"is_approved"`
	GeneratedAt string  `json:"generated_at"`
	ApprovedAt  *string `json:"approved_at"`
}

func toPayrollDTO(payroll application.PayrollRecord) payrollDTO {
	return payrollDTO{
		ID:          payroll.ID,
		UserID:      payroll.UserID,
		Month:       payroll.Month,
		Year:        payroll.Year,
		BaseSalary:  payroll.BaseSalary.StringFixed(2),
		Deductions:  payroll.Deductions.StringFixed(2),
		Bonuses:     payroll.Bonuses.StringFixed(2),
		NetPay:      payroll.NetPay.StringFixed(2),
		IsApproved:  payroll.IsApproved,
		GeneratedAt: payroll.GeneratedAt.UTC().Format(time.RFC3339),
		ApprovedAt:  formatOptionalTime(payroll.ApprovedAt),
	}
}

type announcementDTO struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	TargetTeam *string `json:"target_team"`
	CreatedAt  string  `json:"created_at"`
}

func toAnnouncementDTO(announcement application.Announcement) announcementDTO {
	return announcementDTO{
		ID:         announcement.ID,
		Title:      announcement.Title,
		Content:    announcement.Content,
		TargetTeam: announcement.TargetTeam,
		CreatedAt:  announcement.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339)
	return &formatted
}
