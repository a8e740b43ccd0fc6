package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// DashboardAnnouncements is the number of announcements shown on the dashboard.
const DashboardAnnouncements = 5

// AnnouncementRepository captures the persistence operations for announcements.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, announcement Announcement) (Announcement, error)
	// ListAnnouncements returns broadcasts plus, when team is set, that
	// team's announcements, newest first. A zero limit is unbounded.
	ListAnnouncements(ctx context.Context, team *string, limit int) ([]Announcement, error)
}

// AnnouncementInput captures an announcement to publish.
type AnnouncementInput struct {
	Title      string
	Content    string
	TargetTeam string
}

// AnnouncementService serves the team-scoped announcement feed.
type AnnouncementService struct {
	announcements AnnouncementRepository
	now           func() time.Time
	logger        *slog.Logger
}

// NewAnnouncementService wires the announcement service.
func NewAnnouncementService(announcements AnnouncementRepository, now func() time.Time, logger *slog.Logger) *AnnouncementService {
	if now == nil {
		now = time.Now
	}
	return &AnnouncementService{announcements: announcements, now: now, logger: defaultLogger(logger)}
}

// VisibleTo returns the announcements addressed to everyone or to the
// caller's team, newest first. A limit of zero returns all of them.
func (s *AnnouncementService) VisibleTo(ctx context.Context, principal Principal, limit int) ([]Announcement, error) {
	if s == nil || s.announcements == nil {
		return nil, fmt.Errorf("announcement repository not configured")
	}
	if limit < 0 {
		limit = 0
	}
	announcements, err := s.announcements.ListAnnouncements(ctx, principal.Team, limit)
	if err != nil {
		return nil, err
	}
	if announcements == nil {
		announcements = []Announcement{}
	}
	return announcements, nil
}

// Publish stores a new announcement. Only staff may publish.
func (s *AnnouncementService) Publish(ctx context.Context, principal Principal, input AnnouncementInput) (announcement Announcement, err error) {
	if s == nil || s.announcements == nil {
		err = fmt.Errorf("announcement repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AnnouncementService", "Publish", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "announcement publish", "announcement_id", announcement.ID)
	}()

	if !principal.IsStaff {
		err = ErrUnauthorized
		return
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	} else if utf8.RuneCountInString(title) > 200 {
		vErr.add("title", "title must be at most 200 characters")
	}
	if content == "" {
		vErr.add("content", "content is required")
	}
	team, ok := NormalizeTeam(input.TargetTeam)
	if !ok {
		vErr.add("target_team", "team must be one of "+strings.Join(Teams, ", "))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	announcement, err = s.announcements.CreateAnnouncement(ctx, Announcement{
		Title:      title,
		Content:    content,
		TargetTeam: team,
		CreatedAt:  s.now().UTC(),
	})
	return
}
