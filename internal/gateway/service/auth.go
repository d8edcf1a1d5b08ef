package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/openlms/auth/internal/gateway/directory"
	"github.com/openlms/auth/pkg/cryptox"
	"github.com/openlms/auth/pkg/jwtx"
	"github.com/openlms/auth/pkg/slogx"
)

// TokenPair is what a successful login yields. Refresh is empty on flows
// that only re-mint the access token.
type TokenPair struct {
	Access  string
	Refresh string
}

// Session is the verified identity handed back to callers of Verify.
type Session struct {
	UserID   string
	Username string
	Email    string
	Roles    []string
}

// AuthService orchestrates the credential flows: login against the
// directory, refresh from a refresh token, verify of an access token
// against the authoritative record.
type AuthService struct {
	Codec     *jwtx.Codec
	Directory directory.Client
}

// Login checks a username-or-email + password pair against the directory
// and mints a fresh token pair. A missing user and a wrong password are
// deliberately indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	if usernameOrEmail == "" || password == "" {
		return TokenPair{}, ErrMissingCredential
	}

	identity, err := s.Directory.LookupByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("directory lookup failed during login", "err", err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	if err := cryptox.VerifyPassword(password, identity.PasswordHash); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	principal := jwtx.Principal{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Roles:    identity.Roles,
	}

	access, err := s.Codec.SignAccess(principal)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Codec.SignRefresh(principal)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	log.Info("login succeeded", "sub", identity.ID)
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated; it stays valid until its own
// expiry. Identity payload is re-read from the directory so role changes
// land in the new access token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	if rawRefresh == "" {
		return TokenPair{}, ErrMissingCredential
	}

	info := s.Codec.DecodeInfo(rawRefresh)
	if err := requireUsable(info, jwtx.KindRefresh); err != nil {
		return TokenPair{}, err
	}

	identity, err := s.Directory.LookupByID(ctx, info.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			// Subject no longer exists; the token outlived the account.
			return TokenPair{}, ErrIdentityMismatch
		}
		log.Error("directory lookup failed during refresh", "sub", info.Subject, "err", err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	access, err := s.Codec.SignAccess(jwtx.Principal{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Roles:    identity.Roles,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	log.Info("access token refreshed", "sub", identity.ID)
	return TokenPair{Access: access}, nil
}

// Verify validates an access token and cross-checks its identity payload
// against the directory's current record. Username and email must match
// exactly; every role claimed by the token must still be held.
func (s *AuthService) Verify(ctx context.Context, rawAccess string) (Session, error) {
	log := slogx.FromContext(ctx)

	if rawAccess == "" {
		return Session{}, ErrMissingCredential
	}

	info := s.Codec.DecodeInfo(rawAccess)
	if err := requireUsable(info, jwtx.KindAccess); err != nil {
		return Session{}, err
	}

	identity, err := s.Directory.LookupByID(ctx, info.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return Session{}, ErrIdentityMismatch
		}
		log.Error("directory lookup failed during verify", "sub", info.Subject, "err", err)
		return Session{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	if info.Username != identity.Username || info.Email != identity.Email {
		log.Warn("token identity diverged from directory", "sub", info.Subject)
		return Session{}, ErrIdentityMismatch
	}
	for _, role := range info.Roles {
		if !slices.Contains(identity.Roles, role) {
			log.Warn("token claims revoked role", "sub", info.Subject, "role", role)
			return Session{}, ErrIdentityMismatch
		}
	}

	return Session{
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Roles:    identity.Roles,
	}, nil
}

// requireUsable maps a TokenInfo verdict to the flow error taxonomy.
// Checks run in trust order: a token that never decoded has no kind worth
// arguing about, and an expired token is reported as expired even though
// its payload is also visible.
func requireUsable(info jwtx.TokenInfo, want jwtx.Kind) error {
	if info.Kind == jwtx.KindUndefined {
		return ErrMalformedToken
	}
	if info.Kind != want {
		return ErrWrongTokenKind
	}
	if info.Expired {
		return ErrExpiredToken
	}
	if !info.HasPayload {
		return ErrIncompletePayload
	}
	return nil
}
