package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openlms/auth/internal/directory/domain"
	"github.com/openlms/auth/internal/directory/store"
	"github.com/openlms/auth/pkg/cryptox"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("user_not_found")
	ErrAlreadyExists = errors.New("user_already_exists")
	ErrInvalidInput  = errors.New("invalid_input")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateUserParams is the provisioning input. Validation tags are the
// single source of truth for what a well-formed user looks like.
type CreateUserParams struct {
	Username string   `validate:"required,min=3,max=64"`
	Email    string   `validate:"required,email"`
	Password string   `validate:"required,min=6"`
	Roles    []string `validate:"required,min=1,dive,required"`
}

type UserService struct {
	Store store.Store
}

// Create provisions a new identity record. The password is hashed here,
// at the directory boundary; plaintext never reaches storage.
func (s *UserService) Create(ctx context.Context, p CreateUserParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)

	if err := validate.Struct(p); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		Roles:        p.Roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.User{}, ErrAlreadyExists
		}
		return domain.User{}, err
	}
	return u, nil
}

// GetByID fetches the authoritative record for a subject, the lookup the
// gateway performs during refresh and verify.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// GetByLogin resolves a username-or-email login field, the lookup the
// gateway performs during login.
func (s *UserService) GetByLogin(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" {
		return domain.User{}, ErrInvalidInput
	}

	u, err := s.Store.Users().GetUserByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// UpdateRoles replaces a user's role set. Outstanding access tokens
// minted before the change will fail the gateway's identity cross-check.
func (s *UserService) UpdateRoles(ctx context.Context, id string, roles []string) error {
	if len(roles) == 0 {
		return ErrInvalidInput
	}
	if err := s.Store.Users().UpdateRoles(ctx, id, roles); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
