package models

import "time"

// PasswordResetToken stores only the SHA-256 digest of the token that was
// mailed out; the raw token never touches the database.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
