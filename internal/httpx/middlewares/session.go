// Package middlewares holds the HTTP middleware of the storefront router.
package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// sessionKey carries the shopper session id through the request context.
const sessionKey contextKey = "session_id"

const sessionCookie = "lahma_session"

// Session assigns every shopper a session cookie on first contact and makes
// the id available to handlers. The cart has no identity beyond this.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID extracts the shopper session id from a request context.
// Comma-ok keeps a missing value (tests without the middleware) harmless.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey).(string)
	return sid
}
