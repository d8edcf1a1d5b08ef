package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/openlms/auth/internal/directory/domain"
	"github.com/openlms/auth/internal/directory/store"
	"github.com/openlms/auth/internal/directory/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "directory.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st *sqlite.Store) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           "5b8f0b0e-10ab-4a58-9c5f-0a8c5b7d9a01",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        []string{"student", "moderator"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := seedUser(t, st)

	t.Run("get by id", func(t *testing.T) {
		got, err := st.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, alice.Username, got.Username)
		require.Equal(t, alice.Email, got.Email)
		require.Equal(t, alice.Roles, got.Roles)
	})

	t.Run("get by login matches username or email", func(t *testing.T) {
		byName, err := st.Users().GetUserByLogin(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, byName.ID)

		byEmail, err := st.Users().GetUserByLogin(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, byEmail.ID)
	})

	t.Run("login match is case-insensitive", func(t *testing.T) {
		got, err := st.Users().GetUserByLogin(ctx, "ALICE")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
	})

	t.Run("unknown user is ErrNotFound", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, "no-such-id")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByLogin(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		dupe := alice
		dupe.ID = "another-id"
		dupe.Email = "other@example.com"
		err := st.Users().CreateUser(ctx, dupe)
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("update roles", func(t *testing.T) {
		require.NoError(t, st.Users().UpdateRoles(ctx, alice.ID, []string{"student"}))

		got, err := st.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"student"}, got.Roles)
	})

	t.Run("update roles for unknown user", func(t *testing.T) {
		err := st.Users().UpdateRoles(ctx, "no-such-id", []string{"student"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
