package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens limit the window a stale token
// can be replayed in; refresh tokens trade that off for user convenience.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// ServiceTokenTTL is the fixed lifetime of gateway-minted service
	// tokens. Deliberately tiny: they exist for a single outbound call
	// or a short batch of them.
	ServiceTokenTTL = time.Minute
)

// ServiceSubject is the sentinel subject used when the gateway mints a
// token representing itself rather than an end user.
const ServiceSubject = "service"

// serviceEmail keeps service tokens email-shaped so they survive the same
// decode path as user tokens. Never a deliverable address.
const serviceEmail = "service@gateway.internal"

// Kind is the declared token kind after decode.
type Kind int

const (
	KindUndefined Kind = iota
	KindAccess
	KindRefresh
)

// Wire values of the "type" claim. Both runtimes must agree on these
// exactly or one side starts trusting tokens the other would reject.
const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return typeAccess
	case KindRefresh:
		return typeRefresh
	default:
		return "undefined"
	}
}

// tokenType maps a Kind to its wire value. Undefined has no wire value;
// it only exists on the decode side.
func (k Kind) tokenType() string {
	switch k {
	case KindAccess:
		return typeAccess
	case KindRefresh:
		return typeRefresh
	default:
		return ""
	}
}

// kindFromType maps a claimed "type" value back to a Kind. Anything
// unknown is Undefined, never a guess.
func kindFromType(s string) Kind {
	switch s {
	case typeAccess:
		return KindAccess
	case typeRefresh:
		return KindRefresh
	default:
		return KindUndefined
	}
}

// Claims is the wire payload both runtimes sign and verify. A refresh
// token carries subject + type only; an access token additionally carries
// username, email and roles.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType declares the kind on the wire ("access" or "refresh").
	TokenType string `json:"type"`

	// Identity payload, present only on access tokens.
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Kind returns the declared kind of these claims.
func (c *Claims) Kind() Kind { return kindFromType(c.TokenType) }

// Principal is the identity a token is minted for: an end user, or the
// service sentinel for gateway-to-backend calls.
type Principal struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}

// ServicePrincipal returns the sentinel principal representing the
// gateway itself. It carries no real user roles.
func ServicePrincipal() Principal {
	return Principal{
		ID:       ServiceSubject,
		Username: ServiceSubject,
		Email:    serviceEmail,
	}
}

// IsService reports whether the principal is the service sentinel.
func (p Principal) IsService() bool { return p.ID == ServiceSubject }

// newClaims builds claims for the given kind. The kind rules live here
// and nowhere else: refresh tokens are stripped down to subject + type.
func newClaims(kind Kind, p Principal, ttl time.Duration, now time.Time) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: kind.tokenType(),
	}
	if kind == KindAccess {
		c.Username = p.Username
		c.Email = p.Email
		c.Roles = p.Roles
	}
	return c
}
