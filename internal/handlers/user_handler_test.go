package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"todolist/internal/apperrors"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/session"
)

type fakeUserRepo struct {
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		byUsername: map[string]*models.User{},
		byEmail:    map[string]*models.User{},
	}
	for _, u := range users {
		r.byUsername[u.Username] = u
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := r.byUsername[user.Username]; ok {
		return apperrors.ErrConflict
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.ErrConflict
	}
	r.byUsername[user.Username] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, tx *sql.Tx, userID string, passwordHash string) error {
	for _, u := range r.byUsername {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func testUser(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}
	now := time.Now().UTC()
	return &models.User{
		ID:           "u-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewUserHandler(repo, session.NewMemoryStore(0), 0, false)

	payload := map[string]any{"username": "alice", "password": "password123", "email": "alice@example.com"}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Status != http.StatusCreated {
		t.Fatalf("envelope status mismatch: %+v", resp)
	}
	data, _ := resp.Data.(map[string]any)
	if data["username"] != "alice" {
		t.Fatalf("expected public user in data, got %v", resp.Data)
	}
	if _, leaked := data["password_hash"]; leaked {
		t.Fatalf("password hash leaked in response: %v", data)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	h := NewUserHandler(repo, session.NewMemoryStore(0), 0, false)

	payload := map[string]any{"username": "alice", "password": "password123", "email": "other@example.com"}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	h := NewUserHandler(repo, session.NewMemoryStore(0), 0, false)

	payload := map[string]any{"username": "bob", "password": "password123", "email": "alice@example.com"}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	store := session.NewMemoryStore(0)
	h := NewUserHandler(repo, store, 0, false)

	payload := map[string]any{"username": "alice", "password": "password123"}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sid = c.Value
		}
	}
	if sid == "" {
		t.Fatalf("expected session cookie, got %v", w.Result().Cookies())
	}

	user, err := store.Get(context.Background(), sid)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("wrong user in session: %+v", user)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	h := NewUserHandler(repo, session.NewMemoryStore(0), 0, false)

	attempt := func(username, password string) (int, string) {
		payload := map[string]any{"username": username, "password": password}
		b, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
		w := httptest.NewRecorder()
		h.Login(w, req)
		return w.Code, w.Body.String()
	}

	wrongPassCode, wrongPassBody := attempt("alice", "wrongpassword")
	unknownCode, unknownBody := attempt("nosuchuser", "password123")

	if wrongPassCode != http.StatusUnauthorized || unknownCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401 got %d/%d", wrongPassCode, unknownCode)
	}
	if wrongPassBody != unknownBody {
		t.Fatalf("login failures must be identical:\n%s\n%s", wrongPassBody, unknownBody)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	store := session.NewMemoryStore(0)
	user := testUser(t, "alice", "alice@example.com", "password123")
	sid, err := store.Create(context.Background(), user.Public())
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}

	h := NewUserHandler(newFakeUserRepo(user), store, 0, false)

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if _, err := store.Get(context.Background(), sid); err != session.ErrNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestExistsChecks(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "alice", "alice@example.com", "password123"))
	h := NewUserHandler(repo, session.NewMemoryStore(0), 0, false)

	r := newTestRouter()
	r.Get("/api/users/exists/username/{username}", h.UsernameExists)
	r.Get("/api/users/exists/email/{email}", h.EmailExists)

	cases := []struct {
		path string
		want bool
	}{
		{"/api/users/exists/username/alice", true},
		{"/api/users/exists/username/bob", false},
		{"/api/users/exists/email/alice@example.com", true},
		{"/api/users/exists/email/bob@example.com", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", tc.path, w.Code)
		}
		resp := decodeResponse(t, w)
		if resp.Data != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.path, tc.want, resp.Data)
		}
	}
}

func TestGetByUsernameNotFound(t *testing.T) {
	h := NewUserHandler(newFakeUserRepo(), session.NewMemoryStore(0), 0, false)

	r := newTestRouter()
	r.Get("/api/users/{username}", h.GetByUsername)

	req := httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Data != nil {
		t.Fatalf("expected null data, got %v", resp.Data)
	}
}
