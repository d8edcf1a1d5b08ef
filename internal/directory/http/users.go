package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlms/auth/internal/directory/domain"
	"github.com/openlms/auth/internal/directory/service"
	"github.com/openlms/auth/pkg/httpx"
	"github.com/openlms/auth/pkg/slogx"
)

var (
	errInvalidInput = &httpx.Error{StatusCode: http.StatusBadRequest, Code: "invalid_input", Message: "The request payload is missing or malformed."}
	errUserNotFound = &httpx.Error{StatusCode: http.StatusNotFound, Code: "user_not_found", Message: "No user matches the given identifier."}
	errUserConflict = &httpx.Error{StatusCode: http.StatusConflict, Code: "user_already_exists", Message: "A user with that username or email already exists."}
	errServerError  = &httpx.Error{StatusCode: http.StatusInternalServerError, Code: "server_error", Message: "The directory hit an unexpected error."}
)

// IdentityResponse is the wire shape of a user record. The password hash
// is only populated on the login lookup so the gateway can verify
// credentials; every other endpoint omits it.
type IdentityResponse struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	PasswordHash string   `json:"password_hash,omitempty"`
}

func identityFromUser(u domain.User, withHash bool) IdentityResponse {
	resp := IdentityResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles,
	}
	if withHash {
		resp.PasswordHash = u.PasswordHash
	}
	return resp
}

type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type updateRolesRequest struct {
	Roles []string `json:"roles"`
}

// HandleCreate provisions a new user record.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidInput.WriteError(w)
		return
	}

	user, err := h.UserService.Create(ctx, service.CreateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			errInvalidInput.WriteError(w)
		case errors.Is(err, service.ErrAlreadyExists):
			errUserConflict.WriteError(w)
		default:
			log.Error("create user failed", "err", err)
			errServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identityFromUser(user, false))
}

// HandleGet returns the authoritative record for a subject ID.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if id == "" {
		errInvalidInput.WriteError(w)
		return
	}

	user, err := h.UserService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			errUserNotFound.WriteError(w)
			return
		}
		log.Error("get user failed", "user_id", id, "err", err)
		errServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identityFromUser(user, false))
}

// HandleLookup resolves a username-or-email login field. This is the one
// endpoint that returns the stored password hash, so the gateway can
// check credentials without the plaintext ever leaving it.
func (h *UsersHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := r.URL.Query().Get("login")
	if login == "" {
		errInvalidInput.WriteError(w)
		return
	}

	user, err := h.UserService.GetByLogin(ctx, login)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			errInvalidInput.WriteError(w)
		case errors.Is(err, service.ErrNotFound):
			errUserNotFound.WriteError(w)
		default:
			log.Error("lookup user failed", "err", err)
			errServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identityFromUser(user, true))
}

// HandleUpdateRoles replaces a user's role set.
func (h *UsersHandler) HandleUpdateRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if id == "" {
		errInvalidInput.WriteError(w)
		return
	}

	var req updateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidInput.WriteError(w)
		return
	}

	if err := h.UserService.UpdateRoles(ctx, id, req.Roles); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			errInvalidInput.WriteError(w)
		case errors.Is(err, service.ErrNotFound):
			errUserNotFound.WriteError(w)
		default:
			log.Error("update roles failed", "user_id", id, "err", err)
			errServerError.WriteError(w)
		}
		return
	}

	user, err := h.UserService.GetByID(ctx, id)
	if err != nil {
		log.Error("reload user after roles update failed", "user_id", id, "err", err)
		errServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identityFromUser(user, false))
}
