package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlms/auth/internal/gateway/service"
	"github.com/openlms/auth/pkg/httpx"
	"github.com/openlms/auth/pkg/slogx"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	errBadRequest   = &httpx.Error{StatusCode: http.StatusBadRequest, Code: "invalid_request", Message: "The request is missing a required credential or is malformed."}
	errUnauthorized = &httpx.Error{StatusCode: http.StatusUnauthorized, Code: "unauthorized", Message: "The provided credential was rejected."}
	errUpstream     = &httpx.Error{StatusCode: http.StatusServiceUnavailable, Code: "upstream_unavailable", Message: "The user directory is unreachable."}
	errServer       = &httpx.Error{StatusCode: http.StatusInternalServerError, Code: "server_error", Message: "The gateway hit an unexpected error."}
)

type AuthHandler struct {
	AuthService *service.AuthService
	Cookies     CookieWriter
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HandleLogin exchanges a username-or-email + password for a cookie pair.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errBadRequest.WriteError(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		errBadRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Login, req.Password)
	if err != nil {
		h.writeAuthError(w, ctx, err)
		return
	}

	h.Cookies.SetAccess(w, pair.Access)
	h.Cookies.SetRefresh(w, pair.Refresh)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh mints a fresh access cookie from the refresh cookie. The
// refresh cookie itself is left as is.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pair, err := h.AuthService.Refresh(ctx, readCookie(r, refreshCookieName))
	if err != nil {
		h.writeAuthError(w, ctx, err)
		return
	}

	h.Cookies.SetAccess(w, pair.Access)
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify validates the access cookie against the directory and
// returns the authoritative session.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.AuthService.Verify(ctx, readCookie(r, accessCookieName))
	if err != nil {
		h.writeAuthError(w, ctx, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:   session.UserID,
		Username: session.Username,
		Email:    session.Email,
		Roles:    session.Roles,
	})
}

// HandleLogout clears both token cookies. Always succeeds; there is no
// server-side session to tear down.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthError maps the service error taxonomy onto HTTP. Everything
// credential-shaped collapses to 401 so a probing client learns nothing
// about why it was rejected.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, ctx context.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredential):
		errBadRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrMalformedToken),
		errors.Is(err, service.ErrExpiredToken),
		errors.Is(err, service.ErrWrongTokenKind),
		errors.Is(err, service.ErrIncompletePayload),
		errors.Is(err, service.ErrIdentityMismatch):
		errUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		errUpstream.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("auth flow failed", "err", err)
		errServer.WriteError(w)
	}
}
