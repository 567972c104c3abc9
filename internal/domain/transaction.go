package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusSettled TransactionStatus = "settled"
	TransactionStatusPending TransactionStatus = "pending"
)

// DateLayout is the calendar date format used by every dated entity
const DateLayout = "2006-01-02"

// Transaction belongs to exactly one account. A nil CategoryID means uncategorized.
type Transaction struct {
	ID         uuid.UUID         `json:"id"`
	Date       string            `json:"date"`
	Payee      *string           `json:"payee,omitempty"`
	Memo       *string           `json:"memo,omitempty"`
	AccountID  uuid.UUID         `json:"account_id"`
	CategoryID *uuid.UUID        `json:"category_id,omitempty"`
	Inflow     decimal.Decimal   `json:"inflow"`
	Outflow    decimal.Decimal   `json:"outflow"`
	Status     TransactionStatus `json:"status"`
}

// Net returns the signed effect of the transaction on its account and category
func (t Transaction) Net() decimal.Decimal {
	return t.Inflow.Sub(t.Outflow)
}

// InCategory reports whether the transaction is assigned to the given category
func (t Transaction) InCategory(categoryID uuid.UUID) bool {
	return t.CategoryID != nil && *t.CategoryID == categoryID
}
