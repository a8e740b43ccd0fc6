package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/bpo-portal/internal/persistence"
)

// AnnouncementRepository implements persistence.AnnouncementRepository using SQLite
type AnnouncementRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAnnouncementRepository creates a new SQLite announcement repository
func NewAnnouncementRepository(pool *ConnectionPool) *AnnouncementRepository {
	return &AnnouncementRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAnnouncement inserts an announcement
func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, announcement persistence.Announcement) (persistence.Announcement, error) {
	announcement.Title = strings.TrimSpace(announcement.Title)
	if announcement.Title == "" {
		return persistence.Announcement{}, persistence.ErrConstraintViolation
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	announcement.CreatedAt = announcement.CreatedAt.UTC()

	result, err := r.helper.Exec(ctx,
		`INSERT INTO announcements (title, content, target_team, created_at) VALUES (?, ?, ?, ?)`,
		announcement.Title,
		announcement.Content,
		nullableString(announcement.TargetTeam),
		formatTime(announcement.CreatedAt),
	)
	if err != nil {
		return persistence.Announcement{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Announcement{}, fmt.Errorf("failed to read announcement id: %w", err)
	}
	announcement.ID = id
	return announcement, nil
}

// ListAnnouncements returns broadcasts plus announcements targeted at
// filter.Team, newest first.
func (r *AnnouncementRepository) ListAnnouncements(ctx context.Context, filter persistence.AnnouncementFilter) ([]persistence.Announcement, error) {
	query := `SELECT id, title, content, target_team, created_at FROM announcements WHERE target_team IS NULL`
	var args []any
	if filter.Team != nil {
		query = `SELECT id, title, content, target_team, created_at FROM announcements WHERE (target_team IS NULL OR target_team = ?)`
		args = append(args, *filter.Team)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var announcements []persistence.Announcement
	for rows.Next() {
		var (
			announcement persistence.Announcement
			targetTeam   sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&announcement.ID, &announcement.Title, &announcement.Content, &targetTeam, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		announcement.TargetTeam = stringPtr(targetTeam)
		if announcement.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, announcement)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return announcements, nil
}
