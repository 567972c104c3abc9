package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a real-money account. StartingBalance seeds its running total.
type Account struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

// AccountTransfer moves money between two accounts. It never touches category balances.
type AccountTransfer struct {
	ID            uuid.UUID       `json:"id"`
	Date          string          `json:"date"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Memo          *string         `json:"memo,omitempty"`
}
