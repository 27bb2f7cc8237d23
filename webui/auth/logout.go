// Package auth provides authentication components for the web UI.
// This file contains the logout handler that clears sessions and cookies.
package auth

import (
	"net/http"

	"go.uber.org/zap"
)

// LogoutHandler returns the handler for the editor's /logout endpoint. It
// destroys the server-side session, clears the session cookie, and
// redirects back to the login page.
//
// Both GET and POST are accepted: GET for plain logout links, POST for
// forms. The handler is idempotent; logging out without a valid session
// still redirects cleanly.
func LogoutHandler(m *AuthMiddleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			m.logger.Debug("logout: invalid method",
				zap.String("method", r.Method),
				zap.String("ip", getClientIP(r)),
			)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		sessionID, err := ParseSessionCookieDefault(r)
		if err != nil {
			// Already logged out; still clear the cookie and redirect
			m.logger.Debug("logout: no session cookie found",
				zap.String("ip", getClientIP(r)),
			)
		} else {
			m.DestroySession(sessionID)
			m.logger.Info("logout: session destroyed",
				zap.String("session_id", truncateSessionID(sessionID)),
				zap.String("ip", getClientIP(r)),
			)
		}

		http.SetCookie(w, ClearSessionCookieDefault())

		// 303 after POST so the browser does not resubmit the form
		redirectCode := http.StatusFound
		if r.Method == http.MethodPost {
			redirectCode = http.StatusSeeOther
		}

		http.Redirect(w, r, "/login", redirectCode)
	}
}

// truncateSessionID shortens a session id to its first 8 characters so logs
// never carry a usable credential.
func truncateSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID + "..."
	}
	return sessionID[:8] + "..."
}
