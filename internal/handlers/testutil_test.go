package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/session"
)

func newTestRouter() *chi.Mux {
	return chi.NewRouter()
}

// protectedRouter mounts routes behind SessionAuth backed by a fresh memory
// store and returns a logged-in cookie for the given user.
func protectedRouter(t *testing.T, user *models.UserPublic, mount func(r chi.Router)) (*chi.Mux, *http.Cookie) {
	t.Helper()

	store := session.NewMemoryStore(time.Hour)
	sid, err := store.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(store))
		mount(r)
	})
	return r, &http.Cookie{Name: middleware.SessionCookie, Value: sid}
}

func publicUser(id, username string) *models.UserPublic {
	now := time.Now().UTC()
	return &models.UserPublic{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
