package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"todolist/internal/apperrors"
	"todolist/internal/models"
	"todolist/internal/repository"
	"todolist/internal/services"
)

// tokenTTL is how long a password reset link stays valid.
const tokenTTL = 24 * time.Hour

type PasswordResetHandler struct {
	db      *sql.DB
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	mailer  services.EmailSender
	baseURL string
	v       *validator.Validate
	now     func() time.Time
}

func NewPasswordResetHandler(db *sql.DB, users repository.UserRepository, resets repository.PasswordResetRepository, mailer services.EmailSender, baseURL string) *PasswordResetHandler {
	return &PasswordResetHandler{
		db:      db,
		users:   users,
		resets:  resets,
		mailer:  mailer,
		baseURL: baseURL,
		v:       validator.New(),
		now:     time.Now,
	}
}

// @Tags PasswordReset
// @Summary Request a password reset email
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /api/users/password-reset/request [post]
func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	rawToken, tokenHash, err := generateResetToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create reset token")
		return
	}

	now := h.now().UTC()
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(tokenTTL),
		CreatedAt: now,
	}

	// Replace drops any previous token for this user, so issuing a new
	// reset invalidates the old link.
	if err := h.resets.Replace(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create reset token")
		return
	}

	subject, body := services.PasswordResetEmail(h.baseURL, rawToken)
	if err := h.mailer.Send(u.Email, subject, body); err != nil {
		// The token is already persisted and stays valid; the user can
		// retry the request to get a fresh mail.
		log.Printf("password reset email to %s failed: %v", u.Email, err)
		writeError(w, http.StatusInternalServerError, "failed to send reset email")
		return
	}

	writeJSON(w, http.StatusOK, "password reset email sent", nil)
}

// @Tags PasswordReset
// @Summary Check whether a reset token is valid
// @Produce json
// @Param token query string true "Reset token"
// @Success 200 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /api/users/password-reset/validate [get]
func (h *PasswordResetHandler) Validate(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("token")
	if rawToken == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if _, err := h.lookup(r, rawToken); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "reset token is valid", nil)
}

// @Tags PasswordReset
// @Summary Reset the password using a valid token
// @Accept json
// @Produce json
// @Param token query string true "Reset token"
// @Param body body models.ResetPasswordRequest true "New password"
// @Success 200 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /api/users/password-reset/reset [post]
func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("token")
	if rawToken == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.lookup(r, rawToken)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	u, err := h.users.GetByID(r.Context(), token.UserID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	// Reusing the current password would make the reset a no-op and leave
	// the link replayable, so reject it outright.
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) == nil {
		writeBusinessError(w, apperrors.ErrSamePassword)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	// Swap the hash and burn the token in one transaction: a crash between
	// the two must not leave a reusable link for the new password.
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	defer tx.Rollback()

	if err := h.users.UpdatePasswordHash(r.Context(), tx, u.ID, string(hash)); err != nil {
		writeBusinessError(w, err)
		return
	}
	if err := h.resets.DeleteTx(r.Context(), tx, token.ID); err != nil {
		writeBusinessError(w, err)
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, "password has been reset", nil)
}

// lookup resolves the raw token to its stored row. Expired tokens are
// deleted on sight and reported as expired; a later retry then sees an
// invalid token.
func (h *PasswordResetHandler) lookup(r *http.Request, rawToken string) (*models.PasswordResetToken, error) {
	digest := sha256.Sum256([]byte(rawToken))
	token, err := h.resets.GetByTokenHash(r.Context(), hex.EncodeToString(digest[:]))
	if err != nil {
		return nil, err
	}
	if token.Expired(h.now().UTC()) {
		_ = h.resets.Delete(r.Context(), token.ID)
		return nil, apperrors.ErrTokenExpired
	}
	return token, nil
}

func generateResetToken() (rawToken string, tokenHash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	rawToken = hex.EncodeToString(b)
	digest := sha256.Sum256([]byte(rawToken))
	tokenHash = hex.EncodeToString(digest[:])
	return rawToken, tokenHash, nil
}
