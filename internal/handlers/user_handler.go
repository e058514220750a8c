package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"todolist/internal/apperrors"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/repository"
	"todolist/internal/session"
)

type UserHandler struct {
	users        repository.UserRepository
	sessions     session.Store
	sessionTTL   time.Duration
	secureCookie bool
	v            *validator.Validate
}

func NewUserHandler(users repository.UserRepository, sessions session.Store, sessionTTL time.Duration, secureCookie bool) *UserHandler {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &UserHandler{
		users:        users,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		v:            validator.New(),
	}
}

// @Tags Users
// @Summary Register a new account
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Registration request"
// @Success 201 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Failure 409 {object} handlers.Response
// @Router /api/users/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if taken, err := h.users.UsernameExists(r.Context(), req.Username); err != nil {
		writeBusinessError(w, err)
		return
	} else if taken {
		writeError(w, http.StatusConflict, "username already exists")
		return
	}
	if taken, err := h.users.EmailExists(r.Context(), req.Email); err != nil {
		writeBusinessError(w, err)
		return
	} else if taken {
		writeError(w, http.StatusConflict, "email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		// The pre-checks race against concurrent registrations; the unique
		// constraints are the source of truth.
		if errors.Is(err, apperrors.ErrConflict) {
			writeError(w, http.StatusConflict, "username or email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, "user registered", u.Public())
}

// @Tags Users
// @Summary Log in and start a session
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Login request"
// @Success 200 {object} handlers.Response
// @Failure 401 {object} handlers.Response
// @Router /api/users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Unknown username and wrong password must be indistinguishable.
	u, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeBusinessError(w, apperrors.ErrInvalidCredentials)
			return
		}
		writeBusinessError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeBusinessError(w, apperrors.ErrInvalidCredentials)
		return
	}

	sid, err := h.sessions.Create(r.Context(), u.Public())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, "login successful", u.Public())
}

// @Tags Users
// @Summary Log out and invalidate the session
// @Produce json
// @Success 200 {object} handlers.Response
// @Router /api/users/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, "logged out", nil)
}

// @Tags Users
// @Summary Get the currently authenticated user
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 401 {object} handlers.Response
// @Router /api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeBusinessError(w, apperrors.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, "ok", user)
}

// @Tags Users
// @Summary Look up a user by username
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /api/users/{username} [get]
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", u.Public())
}

func (h *UserHandler) UsernameExists(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	exists, err := h.users.UsernameExists(r.Context(), username)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", exists)
}

func (h *UserHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	exists, err := h.users.EmailExists(r.Context(), email)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", exists)
}
