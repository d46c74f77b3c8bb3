package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie that carries the signed session token. The
// login response body never includes the raw token; the cookie is the only
// session channel.
const SessionCookieName = "bp_session"

// CookieConfig holds cookie attribute settings
type CookieConfig struct {
	Domain   string // empty = current host only
	Secure   bool   // HTTPS only
	SameSite http.SameSite
}

// DefaultCookieConfig returns sensible attributes for the given environment.
func DefaultCookieConfig(env string) CookieConfig {
	return CookieConfig{
		Secure:   env == "production",
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie stores the session token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	})
}
