package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrAmountOutOfRange    = errors.New("amount is out of range")
	ErrMemoTooLong         = errors.New("text exceeds maximum length")
	ErrInvalidReference    = errors.New("referenced entity does not exist")
	ErrDuplicateIdentifier = errors.New("identifier already exists")
	ErrInvalidPolicy       = errors.New("invalid reference policy")
	ErrExportDisabled      = errors.New("snapshot export is not configured")
)

// Validation constants
const (
	MaxNameLength = 255
	MaxMemoLength = 1000

	// MaxAmountScale is the most decimal places an amount may carry
	MaxAmountScale = 8
	// MaxAmountDigits bounds the integer part: amounts stay below 10^15
	MaxAmountDigits = 15
)
