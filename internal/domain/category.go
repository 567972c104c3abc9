package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SystemAvailableCategoryName is the display name of the reserved category
// that holds unallocated funds.
const SystemAvailableCategoryName = "Available"

// Category is a budgeting envelope. GroupID optionally files it under a
// CategoryGroup; grouping never changes balances.
type Category struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
}

// CategoryGroup organizes categories for display, e.g. "Bills" or "Savings goals"
type CategoryGroup struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategoryTransfer reassigns budgeted funds from one category to another,
// including to and from the system available category.
type CategoryTransfer struct {
	ID             uuid.UUID       `json:"id"`
	Date           string          `json:"date"`
	FromCategoryID uuid.UUID       `json:"from_category_id"`
	ToCategoryID   uuid.UUID       `json:"to_category_id"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           *string         `json:"memo,omitempty"`
}
