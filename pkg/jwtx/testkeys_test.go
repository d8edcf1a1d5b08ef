package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openlms/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// writeKeyPairPEM generates a fresh RSA key pair and writes both halves
// as PEM files under dir. Returns the paths and the private key so tests
// can sign arbitrary payloads with it.
func writeKeyPairPEM(t *testing.T, dir string) (signPath, verifyPath string, key *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signPath = filepath.Join(dir, "signing.pem")
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(signPath, privPEM, 0600))

	verifyPath = filepath.Join(dir, "verification.pem")
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(verifyPath, pubPEM, 0600))

	return signPath, verifyPath, key
}

// newTestCodec builds a codec over a throwaway key pair.
func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	signPath, verifyPath, _ := writeKeyPairPEM(t, t.TempDir())
	keys, err := jwtx.LoadKeyPair(signPath, verifyPath)
	require.NoError(t, err)

	return &jwtx.Codec{
		Keys:       keys,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func testPrincipal() jwtx.Principal {
	return jwtx.Principal{
		ID:       "7f9c3c1a-5a1e-4c0a-9be0-2f27f2dd8c11",
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []string{"student", "moderator"},
	}
}
