package jwtx

import "strings"

// payloadCheck is one row of the shared claim schema: the claim being
// checked, which kinds require it, and the shape predicate. Every runtime
// validates decoded tokens off this one table so the rules cannot drift
// between deployments.
type payloadCheck struct {
	name    string
	access  bool // required on access tokens
	refresh bool // required on refresh tokens
	ok      func(*Claims) bool
}

var payloadChecks = []payloadCheck{
	{
		name:    "subject-present",
		access:  true,
		refresh: true,
		ok:      func(c *Claims) bool { return c.Subject != "" },
	},
	{
		name:   "username-present",
		access: true,
		ok:     func(c *Claims) bool { return c.Username != "" },
	},
	{
		name:   "email-shaped",
		access: true,
		ok:     func(c *Claims) bool { return strings.Contains(c.Email, "@") },
	},
	{
		name:   "roles-present",
		access: true,
		ok:     func(c *Claims) bool { return len(c.Roles) > 0 },
	},
}

func (pc payloadCheck) appliesTo(kind Kind) bool {
	switch kind {
	case KindAccess:
		return pc.access
	case KindRefresh:
		return pc.refresh
	default:
		return false
	}
}

// checkPayload runs every check required for the kind and reports whether
// all passed, plus the name of the first failure for logging. The kind
// itself must already be resolved; there is no point checking a username
// without knowing what the token claims to be.
func checkPayload(kind Kind, c *Claims) (bool, string) {
	for _, pc := range payloadChecks {
		if !pc.appliesTo(kind) {
			continue
		}
		if !pc.ok(c) {
			return false, pc.name
		}
	}
	return true, ""
}
