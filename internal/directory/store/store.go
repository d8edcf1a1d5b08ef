package store

import (
	"context"
	"errors"

	"github.com/openlms/auth/internal/directory/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: already exists")
)

// Users is the persistence surface for identity records.
type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin resolves a user by username or email, matched
	// case-insensitively, in one query. Login forms accept either.
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (domain.User, error)

	UpdateRoles(ctx context.Context, id string, roles []string) error
}

// Store is the driver-agnostic database handle.
type Store interface {
	Users() Users
	Ping(ctx context.Context) error
	Close() error
}
