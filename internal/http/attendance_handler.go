package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/bpo-portal/internal/application"
	"github.com/example/bpo-portal/internal/export"
)

type attendanceService interface {
	ClockIn(ctx context.Context, principal application.Principal, sourceIP *string) (application.AttendanceRecord, bool, error)
	ClockOut(ctx context.Context, principal application.Principal) (application.AttendanceRecord, bool, error)
	CurrentSession(ctx context.Context, principal application.Principal) (*application.AttendanceRecord, error)
	History(ctx context.Context, principal application.Principal, page int) (application.Page[application.AttendanceRecord], error)
	Export(ctx context.Context, principal application.Principal, from, to time.Time) ([]application.AttendanceEntry, error)
	Location() *time.Location
	Today() time.Time
}

// AttendanceHandler serves clock-in, clock-out, history and export.
type AttendanceHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

// NewAttendanceHandler wires the attendance endpoints.
func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

// TimeIn opens a session for the caller and returns to the dashboard.
func (h *AttendanceHandler) TimeIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	if _, _, err := h.service.ClockIn(r.Context(), principal, ClientIPFromContext(r.Context())); err != nil {
		h.log(r.Context(), "TimeIn").ErrorContext(r.Context(), "clock in failed", "error", err)
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.redirect(w, r, "/")
}

// TimeOut closes the caller's open session and returns to the dashboard.
func (h *AttendanceHandler) TimeOut(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	if _, _, err := h.service.ClockOut(r.Context(), principal); err != nil {
		h.log(r.Context(), "TimeOut").ErrorContext(r.Context(), "clock out failed", "error", err)
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.redirect(w, r, "/")
}

// History lists the caller's attendance records newest first.
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	page, err := h.service.History(r.Context(), principal, application.ParsePageNumber(r.URL.Query().Get("page")))
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(page, attendanceConverter(h.service.Location())))
}

// Export streams an XLSX workbook of every attendance record whose date lies
// in the inclusive from..to range.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	from, to, err := parseExportRange(r, h.service.Location(), h.service.Today())
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}

	logger := h.log(r.Context(), "Export", "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly))
	entries, err := h.service.Export(r.Context(), principal, from, to)
	if err != nil {
		logger.WarnContext(r.Context(), "export rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAttendance(&buf, entries, h.service.Location()); err != nil {
		logger.ErrorContext(r.Context(), "failed to render workbook", "error", err)
		h.responder.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.AttendanceFilename(from, to)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "attendance exported", "rows", len(entries))
}

// parseExportRange reads from and to as dates in location. A missing to
// defaults to from; a missing from defaults to today.
func parseExportRange(r *http.Request, location *time.Location, today time.Time) (time.Time, time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	query := r.URL.Query()
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}

	parse := func(field, raw string, fallback time.Time) time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return fallback
		}
		value, err := time.ParseInLocation(time.DateOnly, raw, location)
		if err != nil {
			vErr.FieldErrors[field] = "must be a date in YYYY-MM-DD format"
			return time.Time{}
		}
		return value
	}

	from := parse("from", query.Get("from"), today)
	to := parse("to", query.Get("to"), from)
	if vErr.HasErrors() {
		return time.Time{}, time.Time{}, vErr
	}
	return from, to, nil
}
