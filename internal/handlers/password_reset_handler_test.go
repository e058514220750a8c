package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
	"todolist/internal/apperrors"
	"todolist/internal/models"
)

type fakePasswordResetRepo struct {
	byHash map[string]*models.PasswordResetToken
}

func newFakePasswordResetRepo() *fakePasswordResetRepo {
	return &fakePasswordResetRepo{byHash: map[string]*models.PasswordResetToken{}}
}

func (r *fakePasswordResetRepo) Replace(ctx context.Context, token *models.PasswordResetToken) error {
	for hash, t := range r.byHash {
		if t.UserID == token.UserID {
			delete(r.byHash, hash)
		}
	}
	r.byHash[token.TokenHash] = token
	return nil
}

func (r *fakePasswordResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	if t, ok := r.byHash[tokenHash]; ok {
		return t, nil
	}
	return nil, apperrors.ErrTokenInvalid
}

func (r *fakePasswordResetRepo) Delete(ctx context.Context, id string) error {
	for hash, t := range r.byHash {
		if t.ID == id {
			delete(r.byHash, hash)
		}
	}
	return nil
}

func (r *fakePasswordResetRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	for hash, t := range r.byHash {
		if t.ID == id {
			delete(r.byHash, hash)
			return nil
		}
	}
	return apperrors.ErrTokenInvalid
}

type capturingMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *capturingMailer) Send(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return nil
}

// rawTokenFrom pulls the 64-char hex token out of the reset link in the mail body.
func rawTokenFrom(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	if idx < 0 || len(body) < idx+6+64 {
		t.Fatalf("no reset token in mail body: %q", body)
	}
	return body[idx+6 : idx+6+64]
}

func requestReset(t *testing.T, h *PasswordResetHandler, email string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(map[string]any{"email": email})
	req := httptest.NewRequest(http.MethodPost, "/api/users/password-reset/request", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Request(w, req)
	return w
}

func TestRequestResetSendsMailWithLink(t *testing.T) {
	users := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	resets := newFakePasswordResetRepo()
	mailer := &capturingMailer{}
	h := NewPasswordResetHandler(nil, users, resets, mailer, "http://localhost:5173")

	w := requestReset(t, h, "alice@example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if mailer.to != "alice@example.com" {
		t.Fatalf("mail went to %q", mailer.to)
	}
	if !strings.Contains(mailer.body, "http://localhost:5173/reset-password?token=") {
		t.Fatalf("mail body has no reset link: %q", mailer.body)
	}

	// The raw token from the mail must not be stored as-is.
	raw := rawTokenFrom(t, mailer.body)
	if _, ok := resets.byHash[raw]; ok {
		t.Fatalf("raw token stored unhashed")
	}
	if len(resets.byHash) != 1 {
		t.Fatalf("expected 1 stored token, got %d", len(resets.byHash))
	}
}

func TestRequestResetInvalidatesPreviousToken(t *testing.T) {
	users := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	resets := newFakePasswordResetRepo()
	mailer := &capturingMailer{}
	h := NewPasswordResetHandler(nil, users, resets, mailer, "http://localhost:5173")

	requestReset(t, h, "alice@example.com")
	firstRaw := rawTokenFrom(t, mailer.body)
	requestReset(t, h, "alice@example.com")

	if len(resets.byHash) != 1 {
		t.Fatalf("expected old token replaced, have %d tokens", len(resets.byHash))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/password-reset/validate?token="+firstRaw, nil)
	w := httptest.NewRecorder()
	h.Validate(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected first token invalid, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	h := NewPasswordResetHandler(nil, newFakeUserRepo(), newFakePasswordResetRepo(), &capturingMailer{}, "http://localhost:5173")

	w := requestReset(t, h, "ghost@example.com")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestValidateExpiredTokenIsDeleted(t *testing.T) {
	users := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	resets := newFakePasswordResetRepo()
	mailer := &capturingMailer{}
	h := NewPasswordResetHandler(nil, users, resets, mailer, "http://localhost:5173")

	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return issued }
	requestReset(t, h, "alice@example.com")
	raw := rawTokenFrom(t, mailer.body)

	// Past the 24h window the token is rejected and removed.
	h.now = func() time.Time { return issued.Add(25 * time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/api/users/password-reset/validate?token="+raw, nil)
	w := httptest.NewRecorder()
	h.Validate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	if len(resets.byHash) != 0 {
		t.Fatalf("expired token not deleted")
	}
}

func TestResetRejectsSamePassword(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "password123")
	users := newFakeUserRepo(user)
	resets := newFakePasswordResetRepo()
	mailer := &capturingMailer{}
	h := NewPasswordResetHandler(nil, users, resets, mailer, "http://localhost:5173")

	requestReset(t, h, "alice@example.com")
	raw := rawTokenFrom(t, mailer.body)
	oldHash := user.PasswordHash

	b, _ := json.Marshal(map[string]any{"password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/password-reset/reset?token="+raw, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Reset(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	if user.PasswordHash != oldHash {
		t.Fatalf("password changed on rejected reset")
	}
	if len(resets.byHash) != 1 {
		t.Fatalf("token consumed by rejected reset")
	}
}

func TestResetSuccessConsumesToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := testUser(t, "alice", "alice@example.com", "password123")
	users := newFakeUserRepo(user)
	resets := newFakePasswordResetRepo()
	mailer := &capturingMailer{}
	h := NewPasswordResetHandler(db, users, resets, mailer, "http://localhost:5173")

	requestReset(t, h, "alice@example.com")
	raw := rawTokenFrom(t, mailer.body)

	b, _ := json.Marshal(map[string]any{"password": "newpassword456"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/password-reset/reset?token="+raw, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Reset(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword456")) != nil {
		t.Fatalf("new password does not verify against stored hash")
	}
	if len(resets.byHash) != 0 {
		t.Fatalf("token survived the reset")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}

	// The link is single-use.
	req = httptest.NewRequest(http.MethodPost, "/api/users/password-reset/reset?token="+raw, bytes.NewReader(b))
	w = httptest.NewRecorder()
	h.Reset(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected replay rejected with 400, got %d (%s)", w.Code, w.Body.String())
	}
}
