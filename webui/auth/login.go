// Package auth provides authentication components for the web UI.
// This file contains the login handler that handles both GET (render form)
// and POST (authenticate) requests for the /login endpoint.
package auth

import (
	"net/http"
	"time"

	"go_editor/webui"

	"go.uber.org/zap"
)

const (
	// FailedLoginDelay is added after every failed attempt so brute force
	// stays slow and success and failure take comparable time.
	FailedLoginDelay = 1 * time.Second

	// SuccessRedirect is where a successful login lands: the editor UI root.
	SuccessRedirect = "/"

	// LoginPath is the path for the login page.
	LoginPath = "/login"
)

// LoginHandler returns the handler for the editor's /login endpoint.
//
// GET renders the login form, showing any error carried in the query
// string. POST checks the per-IP rate limit, verifies the submitted
// password against the configured editor password, and on success issues a
// session cookie and redirects into the editor. Failures are delayed,
// counted against the rate limit, and bounced back to the form.
func LoginHandler(m *AuthMiddleware) http.HandlerFunc {
	return LoginHandlerWithRedirect(m, SuccessRedirect)
}

// LoginHandlerWithRedirect is LoginHandler with a custom post-login
// destination.
func LoginHandlerWithRedirect(m *AuthMiddleware, successPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handleLoginGET(w, r, m, successPath)
		case http.MethodPost:
			handleLoginPOST(w, r, m, successPath)
		default:
			m.logger.Debug("login: invalid method",
				zap.String("method", r.Method),
				zap.String("ip", getClientIP(r)),
			)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleLoginGET renders the login form, short-circuiting straight to the
// editor when the request already carries a valid session.
func handleLoginGET(w http.ResponseWriter, r *http.Request, m *AuthMiddleware, successPath string) {
	sessionID, err := ParseSessionCookieDefault(r)
	if err == nil {
		if _, err := m.GetSession(sessionID); err == nil {
			m.logger.Debug("login GET: user already logged in, redirecting",
				zap.String("ip", getClientIP(r)),
				zap.String("redirect", successPath),
			)
			http.Redirect(w, r, successPath, http.StatusFound)
			return
		}
	}

	webui.HandleLoginPage(w, r)
}

// handleLoginPOST authenticates the form submission.
func handleLoginPOST(w http.ResponseWriter, r *http.Request, m *AuthMiddleware, successPath string) {
	clientIP := getClientIP(r)

	if !m.CheckRateLimit(w, clientIP) {
		// 429 already written
		return
	}

	if err := r.ParseForm(); err != nil {
		m.logger.Debug("login POST: failed to parse form",
			zap.String("ip", clientIP),
			zap.Error(err),
		)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	password := r.FormValue("password")

	if password == "" {
		m.logger.Debug("login POST: empty password",
			zap.String("ip", clientIP),
		)
		time.Sleep(FailedLoginDelay)
		redirectWithError(w, r, "Password is required")
		return
	}

	if err := m.VerifyPassword(password); err != nil {
		m.RecordFailedAttempt(clientIP)

		m.logger.Info("login POST: authentication failed",
			zap.String("ip", clientIP),
		)

		time.Sleep(FailedLoginDelay)

		redirectWithError(w, r, "Invalid password")
		return
	}

	_, cookie, err := m.CreateSession()
	if err != nil {
		m.logger.Error("login POST: failed to create session",
			zap.String("ip", clientIP),
			zap.Error(err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	m.ResetRateLimit(clientIP)

	http.SetCookie(w, cookie)

	m.logger.Info("login POST: authentication successful",
		zap.String("ip", clientIP),
		zap.String("redirect", successPath),
	)

	// 303 so a refresh does not resubmit the password form
	http.Redirect(w, r, successPath, http.StatusSeeOther)
}

// redirectWithError bounces back to the login form with the error in the
// query string, where the form template displays it.
func redirectWithError(w http.ResponseWriter, r *http.Request, errMsg string) {
	http.Redirect(w, r, LoginPath+"?error="+errMsg, http.StatusSeeOther)
}
