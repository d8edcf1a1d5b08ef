package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// The pepper is a server-side secret appended to every password before
// hashing, so leaked database hashes alone are not crackable offline.
// It is loaded lazily from a file and generated on first use if absent.
var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile string
)

// SetPepperPath configures where the pepper lives. Call once at startup
// before any hashing happens.
func SetPepperPath(path string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = path
	pepper = ""
}

// GetPepper returns the loaded pepper, generating and persisting one if
// the configured file does not exist yet. Failure to obtain a pepper is
// fatal: hashing without it would silently produce incompatible hashes.
func GetPepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}
	if pepperFile == "" {
		// No pepper configured; hash with password only.
		return ""
	}

	p, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}
	pepper = p
	return pepper
}

func loadOrGeneratePepper(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	if raw, err := os.ReadFile(path); err == nil {
		return string(raw), nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	fresh := make([]byte, argonKeyLength)
	if _, err := rand.Read(fresh); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(fresh)

	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return "", err
	}
	return encoded, nil
}
