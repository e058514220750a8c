// Package session holds the server-side login state. A session is an opaque
// random identifier delivered to the client as a cookie; everything the
// identifier maps to lives on the server and dies on logout or TTL expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"todolist/internal/models"
)

// ErrNotFound is returned when the session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

const DefaultTTL = 24 * time.Hour

type Store interface {
	// Create persists the user's public projection under a fresh opaque id.
	Create(ctx context.Context, user *models.UserPublic) (string, error)
	Get(ctx context.Context, id string) (*models.UserPublic, error)
	Delete(ctx context.Context, id string) error
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
