package jwtx

import "time"

// TokenInfo is the typed verdict over a decoded token. Built fresh on
// every decode, never persisted, never mutated after construction.
//
// Kind is Undefined when the claimed type matches no known kind or when
// nothing could be parsed at all; in that state no other field should be
// trusted. HasPayload is a structural-completeness flag independent of
// the signature: a well-signed token can still fail it if a required
// claim was omitted.
type TokenInfo struct {
	Kind       Kind
	Subject    string
	Expired    bool
	HasPayload bool

	// FailedCheck names the payload check that made HasPayload false,
	// for logs only.
	FailedCheck string

	// Present only when Kind is KindAccess.
	Username string
	Email    string
	Roles    []string
}

// NewTokenInfo builds the typed view over decoded claims. A nil claims
// pointer (parse failure) yields the Undefined state.
func NewTokenInfo(c *Claims, expired bool) TokenInfo {
	if c == nil {
		return TokenInfo{Kind: KindUndefined}
	}

	kind := c.Kind()
	if kind == KindUndefined {
		// Unknown declared type short-circuits the pipeline; expiry is
		// still reported for logging.
		return TokenInfo{Kind: KindUndefined, Expired: isExpired(c, expired)}
	}

	hasPayload, failed := checkPayload(kind, c)

	info := TokenInfo{
		Kind:        kind,
		Subject:     c.Subject,
		Expired:     isExpired(c, expired),
		HasPayload:  hasPayload,
		FailedCheck: failed,
	}
	if kind == KindAccess {
		info.Username = c.Username
		info.Email = c.Email
		info.Roles = c.Roles
	}
	return info
}

// DecodeInfo is the decode-and-validate path most callers want: codec
// decode, then the check pipeline, producing a typed TokenInfo. A
// malformed token comes back as the Undefined state rather than an error
// because "who sent this" is already unanswerable.
func (c *Codec) DecodeInfo(raw string) TokenInfo {
	claims, expired, err := c.Decode(raw)
	if err != nil {
		return TokenInfo{Kind: KindUndefined}
	}
	return NewTokenInfo(claims, expired)
}

// IsAccess reports whether the token decoded as an access token.
func (t TokenInfo) IsAccess() bool { return t.Kind == KindAccess }

// IsRefresh reports whether the token decoded as a refresh token.
func (t TokenInfo) IsRefresh() bool { return t.Kind == KindRefresh }

// isExpired treats a missing exp claim as expired: a token that never
// expires was not minted by us.
func isExpired(c *Claims, expired bool) bool {
	if expired {
		return true
	}
	if c.ExpiresAt == nil {
		return true
	}
	return !time.Now().Before(c.ExpiresAt.Time)
}
