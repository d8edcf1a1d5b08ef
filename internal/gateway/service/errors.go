package service

import "errors"

// Every rejection the auth flows can produce. Handlers map these to HTTP
// codes; nothing else about a failure leaks to the client.
var (
	ErrMissingCredential   = errors.New("missing_credential")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrMalformedToken      = errors.New("malformed_token")
	ErrExpiredToken        = errors.New("expired_token")
	ErrWrongTokenKind      = errors.New("wrong_token_kind")
	ErrIncompletePayload   = errors.New("incomplete_payload")
	ErrIdentityMismatch    = errors.New("identity_mismatch")
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
)
