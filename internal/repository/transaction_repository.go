package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"todolist/internal/apperrors"
	"todolist/internal/models"
)

type TransactionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Transaction, error)
	ListByCategory(ctx context.Context, userID string, category string) ([]models.Transaction, error)
	Summary(ctx context.Context, userID string, start, end time.Time) (*models.TransactionSummary, error)
	Create(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, userID string, txnID string, req *models.UpdateTransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, userID string, txnID string) error
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, date, type, amount, category, note, user_id`

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC
	`
	return r.list(ctx, query, userID)
}

func (r *transactionRepository) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`
	return r.list(ctx, query, userID, start, end)
}

func (r *transactionRepository) ListByCategory(ctx context.Context, userID string, category string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND category = $2
		ORDER BY date DESC
	`
	return r.list(ctx, query, userID, category)
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Type, &t.Amount, &t.Category, &t.Note, &t.UserID); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// Summary sums amounts grouped by type over the closed interval [start, end].
// Sums accumulate per type; a type with no rows contributes zero.
func (r *transactionRepository) Summary(ctx context.Context, userID string, start, end time.Time) (*models.TransactionSummary, error) {
	query := `
		SELECT type, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY type
	`

	rows, err := r.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &models.TransactionSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for rows.Next() {
		var (
			txnType models.TransactionType
			total   decimal.Decimal
		)
		if err := rows.Scan(&txnType, &total); err != nil {
			return nil, err
		}
		switch txnType {
		case models.TransactionIncome:
			summary.TotalIncome = summary.TotalIncome.Add(total)
		case models.TransactionExpense:
			summary.TotalExpense = summary.TotalExpense.Add(total)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, date, type, amount, category, note, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.Date, txn.Type, txn.Amount, txn.Category, txn.Note, txn.UserID)
	return err
}

func (r *transactionRepository) Update(ctx context.Context, userID string, txnID string, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET date = COALESCE($1, date),
			type = COALESCE($2, type),
			amount = COALESCE($3, amount),
			category = COALESCE($4, category),
			note = COALESCE($5, note)
		WHERE id = $6 AND user_id = $7
		RETURNING ` + transactionColumns

	var t models.Transaction
	err := r.db.QueryRowContext(ctx, query,
		req.Date, req.Type, req.Amount, req.Category, req.Note, txnID, userID,
	).Scan(&t.ID, &t.Date, &t.Type, &t.Amount, &t.Category, &t.Note, &t.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Delete(ctx context.Context, userID string, txnID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, txnID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
