package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"todolist/internal/models"
	"todolist/internal/session"
)

type ctxKey string

const ctxUser ctxKey = "user"

// SessionCookie is the name of the cookie carrying the opaque session id.
const SessionCookie = "session_id"

// SessionAuth resolves the session cookie against the store and injects the
// authenticated user into the request context. Requests without a live
// session are rejected before reaching any handler.
func SessionAuth(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			user, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user placed in the context by
// SessionAuth, or nil outside a protected route.
func UserFrom(ctx context.Context) *models.UserPublic {
	user, _ := ctx.Value(ctxUser).(*models.UserPublic)
	return user
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  http.StatusUnauthorized,
		"message": "not logged in",
		"data":    nil,
	})
}
