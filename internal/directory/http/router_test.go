package http_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	httpapi "github.com/openlms/auth/internal/directory/http"
	"github.com/openlms/auth/internal/directory/service"
	"github.com/openlms/auth/internal/directory/store/drivers/sqlite"
	"github.com/openlms/auth/pkg/cryptox"
	"github.com/openlms/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	signPath := filepath.Join(dir, "signing.pem")
	require.NoError(t, os.WriteFile(signPath, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	verifyPath := filepath.Join(dir, "verification.pem")
	require.NoError(t, os.WriteFile(verifyPath, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	}), 0600))

	keys, err := jwtx.LoadKeyPair(signPath, verifyPath)
	require.NoError(t, err)
	return &jwtx.Codec{Keys: keys, AccessTTL: time.Minute, RefreshTTL: time.Hour}
}

func newTestServer(t *testing.T) (*httptest.Server, *jwtx.Codec) {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec := testCodec(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := httpapi.NewRouter(codec, "test", st, logger)
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, codec
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeIdentity(t *testing.T, resp *http.Response) httpapi.IdentityResponse {
	t.Helper()
	defer resp.Body.Close()

	var out httpapi.IdentityResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUserEndpoints(t *testing.T) {
	srv, codec := newTestServer(t)

	token, err := codec.SignService()
	require.NoError(t, err)

	createBody := map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-pw",
		"roles":    []string{"student", "moderator"},
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/users", token, createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeIdentity(t, resp)
	require.NotEmpty(t, created.ID)
	require.Empty(t, created.PasswordHash, "create must not echo the hash")

	t.Run("requests without a service token are rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+created.ID, "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("get by id omits the hash", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeIdentity(t, resp)
		require.Equal(t, "alice", got.Username)
		require.Empty(t, got.PasswordHash)
	})

	t.Run("lookup returns the hash for credential checks", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/lookup?login=alice@example.com", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeIdentity(t, resp)
		require.Equal(t, created.ID, got.ID)
		require.NotEmpty(t, got.PasswordHash)
		require.NoError(t, cryptox.VerifyPassword("correct-pw", got.PasswordHash))
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/lookup?login=nobody", token, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("duplicate user is 409", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/users", token, createBody)
		defer resp.Body.Close()
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid create payload is 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/users", token, map[string]any{
			"username": "bob",
			"email":    "not-an-email",
			"password": "correct-pw",
			"roles":    []string{"student"},
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("roles update is reflected in lookups", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/v1/users/"+created.ID+"/roles", token, map[string]any{
			"roles": []string{"student"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeIdentity(t, resp)
		require.Equal(t, []string{"student"}, got.Roles)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "ok", health.Status)
}
