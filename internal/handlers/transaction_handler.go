package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/repository"
)

type TransactionHandler struct {
	transactions repository.TransactionRepository
	v            *validator.Validate
}

func NewTransactionHandler(transactions repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, v: validator.New()}
}

// @Tags Transactions
// @Summary List all transactions, newest first
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 401 {object} handlers.Response
// @Router /api/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	txns, err := h.transactions.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, "ok", txns)
}

// @Tags Transactions
// @Summary List transactions within a date range
// @Produce json
// @Param start query string true "Range start (RFC 3339 or 2006-01-02T15:04:05)"
// @Param end query string true "Range end"
// @Success 200 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /api/transactions/range [get]
func (h *TransactionHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	txns, err := h.transactions.ListByDateRange(r.Context(), user.ID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, "ok", txns)
}

// @Tags Transactions
// @Summary List transactions for a category
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} handlers.Response
// @Router /api/transactions/category/{category} [get]
func (h *TransactionHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	category := chi.URLParam(r, "category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	txns, err := h.transactions.ListByCategory(r.Context(), user.ID, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, "ok", txns)
}

// @Tags Transactions
// @Summary Income/expense summary over a date range
// @Produce json
// @Param start query string true "Range start"
// @Param end query string true "Range end"
// @Success 200 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /api/transactions/summary [get]
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	summary, err := h.transactions.Summary(r.Context(), user.ID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, "ok", summary)
}

// @Tags Transactions
// @Summary Create a transaction
// @Accept json
// @Produce json
// @Param body body models.CreateTransactionRequest true "Transaction"
// @Success 201 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	txn := &models.Transaction{
		ID:       uuid.NewString(),
		Date:     date,
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
		UserID:   user.ID,
	}
	if err := h.transactions.Create(r.Context(), txn); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, "transaction created", txn)
}

// @Tags Transactions
// @Summary Update a transaction
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param body body models.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	txnID := chi.URLParam(r, "id")

	var req models.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	txn, err := h.transactions.Update(r.Context(), user.ID, txnID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "transaction updated", txn)
}

// @Tags Transactions
// @Summary Delete a transaction
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	txnID := chi.URLParam(r, "id")

	if err := h.transactions.Delete(r.Context(), user.ID, txnID); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "transaction deleted", nil)
}

// parseDateRange reads the start/end query params. Both RFC 3339 and the
// second-precision local form the frontend sends are accepted.
func parseDateRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	start, err := parseTime(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return time.Time{}, time.Time{}, false
	}
	end, err = parseTime(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
