// Package auth provides authentication molecules for the web UI.
// This file contains the secure cookie builder for editor login sessions.
package auth

import (
	"errors"
	"net/http"
	"time"
)

const (
	// DefaultCookieMaxAge is the default login session duration (24 hours),
	// in seconds.
	DefaultCookieMaxAge = 24 * 60 * 60

	// DefaultCookiePath scopes the cookie to the whole editor UI.
	DefaultCookiePath = "/"

	// SessionCookieName is the name of the login session cookie.
	SessionCookieName = "session_id"
)

// ErrNoCookie is returned when the request carries no session cookie.
var ErrNoCookie = errors.New("cookie not found")

// ErrEmptyCookieName is returned for a cookie config without a name.
var ErrEmptyCookieName = errors.New("cookie name cannot be empty")

// ErrEmptySessionID is returned when building a cookie for an empty session id.
var ErrEmptySessionID = errors.New("session ID cannot be empty")

// CookieConfig holds the attributes of the login session cookie.
type CookieConfig struct {
	Name string

	// MaxAge in seconds. -1 deletes the cookie, 0 makes it a browser-session
	// cookie.
	MaxAge int

	// Secure restricts the cookie to HTTPS. Off by default so local
	// deployments over plain HTTP keep working.
	Secure bool

	// HTTPOnly keeps the cookie out of reach of page scripts.
	HTTPOnly bool

	// SameSite controls cross-site request behavior. Strict blocks the
	// editor's cookie from riding along on cross-origin requests.
	SameSite http.SameSite

	Path string
}

// DefaultCookieConfig returns the editor's session cookie defaults:
// HTTPOnly, SameSite=Strict, 24 hour lifetime, site-wide path. Secure is
// left off; enable it when serving over HTTPS.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     SessionCookieName,
		MaxAge:   DefaultCookieMaxAge,
		Secure:   false,
		HTTPOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     DefaultCookiePath,
	}
}

// NewSessionCookie builds the login session cookie for the given session id,
// ready for http.SetCookie.
func NewSessionCookie(sessionID string, cfg CookieConfig) (*http.Cookie, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	name := cfg.Name
	if name == "" {
		return nil, ErrEmptyCookieName
	}

	return &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     cfg.Path,
		MaxAge:   cfg.MaxAge,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}, nil
}

// NewSessionCookieWithDefaults builds a session cookie with the default
// config; secure toggles the HTTPS-only flag.
func NewSessionCookieWithDefaults(sessionID string, secure bool) (*http.Cookie, error) {
	cfg := DefaultCookieConfig()
	cfg.Secure = secure
	return NewSessionCookie(sessionID, cfg)
}

// ParseSessionCookie extracts the session id from the named request cookie.
// Returns ErrNoCookie when the cookie is absent.
func ParseSessionCookie(r *http.Request, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyCookieName
	}

	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNoCookie
		}
		return "", err
	}

	return cookie.Value, nil
}

// ParseSessionCookieDefault extracts the session id from the default
// session cookie.
func ParseSessionCookieDefault(r *http.Request) (string, error) {
	return ParseSessionCookie(r, SessionCookieName)
}

// ClearSessionCookie builds a cookie that tells the browser to drop the
// named cookie, for logout.
func ClearSessionCookie(name string) (*http.Cookie, error) {
	if name == "" {
		return nil, ErrEmptyCookieName
	}

	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     DefaultCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// ClearSessionCookieDefault builds a clear cookie for the default session
// cookie name.
func ClearSessionCookieDefault() *http.Cookie {
	cookie, _ := ClearSessionCookie(SessionCookieName)
	return cookie
}

// DurationToSeconds converts a session TTL into cookie MaxAge seconds.
func DurationToSeconds(d time.Duration) int {
	return int(d.Seconds())
}
