package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

type Transaction struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Type     TransactionType `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Note     *string         `json:"note,omitempty"`
	UserID   string          `json:"-"`
}

type CreateTransactionRequest struct {
	Date     *time.Time      `json:"date,omitempty"`
	Type     TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Note     *string         `json:"note,omitempty"`
}

type UpdateTransactionRequest struct {
	Date     *time.Time       `json:"date,omitempty"`
	Type     *TransactionType `json:"type,omitempty" validate:"omitempty,oneof=INCOME EXPENSE"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category *string          `json:"category,omitempty"`
	Note     *string          `json:"note,omitempty"`
}

// TransactionSummary aggregates amounts by type over a closed date interval.
// Balance is always totalIncome - totalExpense.
type TransactionSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}
