package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// userIDHeader carries the authenticated identity, set by the auth subsystem
// in front of this service. An absent header means an anonymous caller.
const userIDHeader = "X-User-ID"

// Identity copies the caller's identity from the trusted header into the
// request context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := strings.TrimSpace(r.Header.Get(userIDHeader)); userID != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user's id, or "" for anonymous callers.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}
