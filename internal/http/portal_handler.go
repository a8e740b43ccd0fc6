package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/bpo-portal/internal/application"
)

type profileService interface {
	Profile(ctx context.Context, principal application.Principal) (application.User, error)
}

type announcementService interface {
	VisibleTo(ctx context.Context, principal application.Principal, limit int) ([]application.Announcement, error)
}

// PortalHandler serves the dashboard, profile and announcement pages.
type PortalHandler struct {
	users         profileService
	announcements announcementService
	attendance    attendanceService
	responder     responder
	logger        *slog.Logger
}

// NewPortalHandler wires the read-only portal pages.
func NewPortalHandler(users profileService, announcements announcementService, attendance attendanceService, logger *slog.Logger) *PortalHandler {
	base := defaultLogger(logger)
	return &PortalHandler{
		users:         users,
		announcements: announcements,
		attendance:    attendance,
		responder:     newResponder(base),
		logger:        base,
	}
}

// Dashboard returns the caller's open session, the latest visible
// announcements and the caller's address.
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	open, err := h.attendance.CurrentSession(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	announcements, err := h.announcements.VisibleTo(r.Context(), principal, application.DashboardAnnouncements)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}

	resp := dashboardResponse{
		Username:      principal.Username,
		IsStaff:       principal.IsStaff,
		ClientIP:      ClientIPFromContext(r.Context()),
		Announcements: mapSlice(announcements, toAnnouncementDTO),
	}
	if open != nil {
		dto := attendanceConverter(h.attendance.Location())(*open)
		resp.OpenSession = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Profile returns the caller's own account fields.
func (h *PortalHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	user, err := h.users.Profile(r.Context(), principal)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "PortalHandler", "Profile").ErrorContext(r.Context(), "failed to load profile", "error", err)
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// Announcements returns every announcement visible to the caller.
func (h *PortalHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	announcements, err := h.announcements.VisibleTo(r.Context(), principal, 0)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[announcementDTO]{Items: mapSlice(announcements, toAnnouncementDTO)})
}

type dashboardResponse struct {
	Username      string            `json:"username"`
	IsStaff       bool              `json:"is_staff"`
	ClientIP      *string           `json:"client_ip"`
	OpenSession   *attendanceDTO    `json:"open_session"`
	Announcements []announcementDTO `json:"announcements"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}
