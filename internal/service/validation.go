package service

import (
	"strings"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

func validateDate(date string) (string, error) {
	t, err := util.ParseDate(date)
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	return util.FormatDate(t), nil
}

// normalizeText trims optional free text; blank becomes nil
func normalizeText(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	if len(v) > domain.MaxMemoLength {
		return nil, domain.ErrMemoTooLong
	}
	return &v, nil
}

var maxAmount = decimal.New(1, domain.MaxAmountDigits)

// validateAmount rejects amounts with more than MaxAmountScale decimal places
// or an absolute value of 10^MaxAmountDigits or more.
func validateAmount(amount decimal.Decimal) error {
	// Exponent first, zero included: Cmp and later sums rescale to it
	if amount.Exponent() > domain.MaxAmountDigits || amount.Exponent() < -domain.MaxAmountScale {
		return domain.ErrAmountOutOfRange
	}
	if amount.Abs().Cmp(maxAmount) >= 0 {
		return domain.ErrAmountOutOfRange
	}
	return nil
}

func validateNonNegative(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	return nil
}

// newIDIfNil keeps caller-supplied ids and assigns one otherwise
func newIDIfNil(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
