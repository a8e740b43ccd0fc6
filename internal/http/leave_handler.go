package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/bpo-portal/internal/application"
)

type leaveService interface {
	Submit(ctx context.Context, principal application.Principal, input application.LeaveInput) (application.LeaveRequest, error)
	ListMine(ctx context.Context, principal application.Principal, page int) (application.Page[application.LeaveRequest], error)
	ListPending(ctx context.Context, principal application.Principal) ([]application.LeaveRequest, error)
	Decide(ctx context.Context, principal application.Principal, leaveID int64, outcome application.LeaveOutcome) (application.LeaveRequest, error)
}

// LeaveHandler serves leave submission, listings and staff decisions.
type LeaveHandler struct {
	service   leaveService
	responder responder
	logger    *slog.Logger
}

// NewLeaveHandler wires the leave endpoints.
func NewLeaveHandler(service leaveService, logger *slog.Logger) *LeaveHandler {
	base := defaultLogger(logger)
	return &LeaveHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LeaveHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "LeaveHandler", operation, attrs...)
}

// RequestForm describes the leave request form and the selectable types.
func (h *LeaveHandler) RequestForm(w http.ResponseWriter, r *http.Request) {
	types := make([]leaveTypeDTO, 0, len(application.LeaveTypes))
	for _, option := range application.LeaveTypes {
		types = append(types, leaveTypeDTO{Code: option.Code, Label: option.Label})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, leaveFormResponse{
		Fields:     []string{"leave_type", "start_date", "end_date", "reason"},
		LeaveTypes: types,
	})
}

// Submit creates a pending leave request and redirects to the caller's list.
func (h *LeaveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	input, err := decodeLeaveInput(r)
	if err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode leave request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if _, err := h.service.Submit(r.Context(), principal, input); err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.redirect(w, r, "/leave/list")
}

// List returns one page of the caller's leave requests.
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	page, err := h.service.ListMine(r.Context(), principal, application.ParsePageNumber(r.URL.Query().Get("page")))
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(page, toLeaveDTO))
}

// Approval returns the pending leave queue.
func (h *LeaveHandler) Approval(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated)
		return
	}

	pending, err := h.service.ListPending(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[leaveDTO]{Items: mapSlice(pending, toLeaveDTO)})
}

// Approve approves the leave named in the path.
func (h *LeaveHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, application.LeaveApprove)
}

// Reject rejects the leave named in the path.
func (h *LeaveHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, application.LeaveReject)
}

func (h *LeaveHandler) decide(w http.ResponseWriter, r *http.Request, outcome application.LeaveOutcome) {
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

	logger := h.log(r.Context(), "Decide", "leave_id", id, "outcome", string(outcome))
	if _, err := h.service.Decide(r.Context(), principal, id, outcome); err != nil {
		logger.WarnContext(r.Context(), "leave decision rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}
	h.responder.redirect(w, r, "/leave/approval")
}

type leaveTypeDTO struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type leaveFormResponse struct {
	Fields     []string       `json:"fields"`
	LeaveTypes []leaveTypeDTO `json:"leave_types"`
}

type leaveRequestBody struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func decodeLeaveInput(r *http.Request) (application.LeaveInput, error) {
	if isJSON(r) {
		var body leaveRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return application.LeaveInput{}, err
		}
		return application.LeaveInput(body), nil
	}
	if err := r.ParseForm(); err != nil {
		return application.LeaveInput{}, err
	}
	return application.LeaveInput{
		LeaveType: r.PostForm.Get("leave_type"),
		StartDate: r.PostForm.Get("start_date"),
		EndDate:   r.PostForm.Get("end_date"),
		Reason:    r.PostForm.Get("reason"),
	}, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
}
