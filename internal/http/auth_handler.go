package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/example/bpo-portal/internal/application"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
}

// AuthHandler serves the login form, login submission and logout.
type AuthHandler struct {
	service   authService
	cookies   SessionCookies
	responder responder
	logger    *slog.Logger
}

// NewAuthHandler wires the login endpoints.
func NewAuthHandler(service authService, cookies SessionCookies, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, cookies: cookies, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// LoginForm describes the login form fields.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginFormResponse{
		Fields: []string{"username", "password"},
		Next:   safeNext(r.URL.Query().Get("next")),
	})
}

// Login authenticates a form or JSON submission, stamps the caller address on
// the account and redirects to the requested page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, err := decodeLoginRequest(r)
	if err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	username := strings.TrimSpace(req.Username)
	logger := h.log(r.Context(), "Login", "username", username)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Username:    username,
		Password:    req.Password,
		Fingerprint: r.UserAgent(),
		ClientIP:    ClientIPFromContext(r.Context()),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	h.cookies.set(w, result.Session.Token, result.Session.ExpiresAt)
	logger.InfoContext(r.Context(), "user logged in", "user_id", result.User.ID)
	h.responder.redirect(w, r, safeNext(req.Next))
}

// Logout revokes the current session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Logout")
	if token := h.cookies.token(r); token != "" {
		if err := h.service.RevokeSession(r.Context(), token); err != nil && application.ErrorKind(err) == "unexpected" {
			logger.ErrorContext(r.Context(), "failed to revoke session", "error", err)
			h.responder.handleServiceError(w, r, err)
			return
		}
	}

	h.cookies.clear(w)
	logger.InfoContext(r.Context(), "user logged out")
	h.responder.redirect(w, r, "/login")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

type loginFormResponse struct {
	Fields []string `json:"fields"`
	Next   string   `json:"next"`
}

func decodeLoginRequest(r *http.Request) (loginRequest, error) {
	if isJSON(r) {
		var req loginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if req.Next == "" {
			req.Next = r.URL.Query().Get("next")
		}
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return loginRequest{}, err
	}
	return loginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
		Next:     r.Form.Get("next"),
	}, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
