package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the token is forged, corrupted, or signed with a
	// different key. No claims are recoverable and nothing about the
	// token should be logged as trusted.
	ErrMalformed = errors.New("jwtx: malformed token")
)

// Codec signs claims into compact RS256 tokens and decodes them back.
// Minting and decoding are pure CPU work; the zero Now field means
// time.Now and only tests override it.
type Codec struct {
	Keys       *KeyPair
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now supplies the clock. Nil means time.Now.
	Now func() time.Time
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// SignAccess mints an access token for the principal: subject + type +
// username + email + roles, expiring after AccessTTL.
func (c *Codec) SignAccess(p Principal) (string, error) {
	return c.sign(KindAccess, p, c.AccessTTL)
}

// SignRefresh mints a refresh token: subject + type only, expiring after
// RefreshTTL. Deliberately carries no identity payload so a leaked
// refresh token discloses nothing beyond the user id.
func (c *Codec) SignRefresh(p Principal) (string, error) {
	return c.sign(KindRefresh, p, c.RefreshTTL)
}

// SignService mints the short-lived token the gateway uses to
// authenticate its own calls to backend services. Always access-kind,
// always ServiceTokenTTL.
func (c *Codec) SignService() (string, error) {
	return c.sign(KindAccess, ServicePrincipal(), ServiceTokenTTL)
}

func (c *Codec) sign(kind Kind, p Principal, ttl time.Duration) (string, error) {
	if !c.Keys.CanSign() {
		return "", ErrNoSigningKey
	}

	claims := newClaims(kind, p, ttl, c.now())
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.Keys.signing)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Decode verifies a token against the verification key and returns its
// claims plus an expired flag.
//
// Expiry is not invalidity: an expired-but-validly-signed token still
// returns its claims (with expired=true) so callers can log who presented
// a stale token. A bad signature or unparseable structure returns
// ErrMalformed and no claims at all.
func (c *Codec) Decode(raw string) (*Claims, bool, error) {
	if c.Keys == nil || c.Keys.verification == nil {
		return nil, false, ErrNoVerificationKey
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.Keys.verification, nil
	})
	if err == nil {
		if !token.Valid {
			return nil, false, ErrMalformed
		}
		return claims, false, nil
	}

	// The signature was already checked before claim validation ran, so
	// on a pure expiry failure the parsed claims are trustworthy.
	if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return claims, true, nil
	}

	return nil, false, fmt.Errorf("%w: %w", ErrMalformed, err)
}
