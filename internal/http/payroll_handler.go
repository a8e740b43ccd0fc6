package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/bpo-portal/internal/application"
)

type payrollService interface {
	ListApproved(ctx context.Context, principal application.Principal, page int) (application.Page[application.PayrollRecord], error)
	Detail(ctx context.Context, principal application.Principal, payrollID int64) (application.PayrollRecord, error)
	ListUnapproved(ctx context.Context, principal application.Principal) ([]application.PayrollRecord, error)
	Approve(ctx context.Context, principal application.Principal, payrollID int64) (application.PayrollRecord, error)
}

// PayrollHandler serves payroll listings, detail and staff approval.
type PayrollHandler struct {
	service   payrollService
	responder responder
	logger    *slog.Logger
}

// NewPayrollHandler wires the payroll endpoints.
func NewPayrollHandler(service payrollService, logger *slog.Logger) *PayrollHandler {
	base := defaultLogger(logger)
	return &PayrollHandler{service: service, responder: newResponder(base), logger: base}
}

// List returns one page of the caller's approved payrolls.
func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	page, err := h.service.ListApproved(r.Context(), principal, application.ParsePageNumber(r.URL.Query().Get("page")))
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(page, toPayrollDTO))
}

// Detail returns one payroll. Unparseable, missing and foreign ids share the
// same 404 response.
func (h *PayrollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.responder.handleServiceError(w, r, application.ErrNotFound)
		return
	}

	payroll, err := h.service.Detail(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPayrollDTO(payroll))
}

// Approval returns the unapproved payroll queue.
func (h *PayrollHandler) Approval(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	pending, err := h.service.ListUnapproved(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[payrollDTO]{Items: mapSlice(pending, toPayrollDTO)})
}

// Approve approves the payroll named in the path.
func (h *PayrollHandler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.responder.handleServiceError(w, r, application.ErrNotFound)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "PayrollHandler", "Approve", "payroll_id", id)
	if _, err := h.service.Approve(r.Context(), principal, id); err != nil {
		logger.WarnContext(r.Context(), "payroll approval rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.redirect(w, r, "/payroll/approval")
}
