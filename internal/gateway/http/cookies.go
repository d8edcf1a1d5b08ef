package http

import (
	"net/http"
	"time"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"

	// The refresh cookie is scoped to the one endpoint that reads it, so
	// the long-lived credential never rides along on other requests.
	accessCookiePath  = "/"
	refreshCookiePath = "/api/auth/refresh"
)

// CookieWriter stamps token cookies with consistent flags. Secure is off
// in dev so the flows work over plain http on localhost.
type CookieWriter struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieWriter) write(w http.ResponseWriter, name, value, path string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetAccess writes the access token cookie.
func (c CookieWriter) SetAccess(w http.ResponseWriter, token string) {
	c.write(w, accessCookieName, token, accessCookiePath, int(c.AccessTTL.Seconds()))
}

// SetRefresh writes the refresh token cookie.
func (c CookieWriter) SetRefresh(w http.ResponseWriter, token string) {
	c.write(w, refreshCookieName, token, refreshCookiePath, int(c.RefreshTTL.Seconds()))
}

// Clear expires both token cookies. Scoping must match the set calls or
// browsers will keep the originals.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	c.write(w, accessCookieName, "", accessCookiePath, -1)
	c.write(w, refreshCookieName, "", refreshCookiePath, -1)
}

// readCookie returns the named cookie's value, or empty when absent.
func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
