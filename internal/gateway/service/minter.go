package service

import (
	"sync"
	"time"

	"github.com/openlms/auth/pkg/jwtx"
)

// remintMargin is how close to expiry a cached service token may get
// before the minter cuts a fresh one. Keeps a token from expiring
// mid-flight on a slow upstream call.
const remintMargin = 5 * time.Second

// Minter hands out the gateway's service bearer token. Tokens are cached
// and reused within their TTL; signing is cheap but not free, and the
// directory sees one of these on every lookup.
type Minter struct {
	Codec *jwtx.Codec

	// Now supplies the clock. Nil means time.Now.
	Now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (m *Minter) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// ServiceToken returns a service token that is valid for at least
// remintMargin from now, minting a new one only when the cached token is
// about to lapse.
func (m *Minter) ServiceToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.token != "" && now.Add(remintMargin).Before(m.expiresAt) {
		return m.token, nil
	}

	token, err := m.Codec.SignService()
	if err != nil {
		return "", err
	}

	m.token = token
	m.expiresAt = now.Add(jwtx.ServiceTokenTTL)
	return token, nil
}
