package cryptox_test

import (
	"path/filepath"
	"testing"

	"github.com/openlms/auth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	t.Run("correct password verifies", func(t *testing.T) {
		require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	})

	t.Run("wrong password is a clean mismatch", func(t *testing.T) {
		err := cryptox.VerifyPassword("incorrect horse", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("same password hashes differently each time", func(t *testing.T) {
		other, err := cryptox.HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.NotEqual(t, hash, other, "salts must differ")
	})

	t.Run("malformed hash is rejected", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword("anything", "$argon2id$bogus"))
		require.Error(t, cryptox.VerifyPassword("anything", "plainly-not-phc"))
	})
}

func TestPepperChangesHashInput(t *testing.T) {
	dir := t.TempDir()

	cryptox.SetPepperPath(filepath.Join(dir, "pepper-a"))
	hash, err := cryptox.HashPassword("secret")
	require.NoError(t, err)

	// A different pepper must fail verification of the old hash.
	cryptox.SetPepperPath(filepath.Join(dir, "pepper-b"))
	require.ErrorIs(t, cryptox.VerifyPassword("secret", hash), cryptox.ErrPasswordMismatch)

	// Restoring the original pepper restores verification.
	cryptox.SetPepperPath(filepath.Join(dir, "pepper-a"))
	require.NoError(t, cryptox.VerifyPassword("secret", hash))
}
