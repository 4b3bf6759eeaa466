package util

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.RequireFromString("99999999.99")

// ValidateAmount checks a money amount: positive and within range.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	if amount.GreaterThan(maxAmount) {
		return errors.New("amount is too large")
	}
	return nil
}

// ValidateDate checks a yyyy-mm-dd date string and returns the parsed time.
func ValidateDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("date must be in yyyy-mm-dd format")
	}
	if t.Year() < 2000 || t.Year() > 2100 {
		return time.Time{}, errors.New("date is out of range")
	}
	return t, nil
}

// ValidateCurrency checks a currency code against the supported set.
func ValidateCurrency(code string) error {
	switch code {
	case "", "EGP", "USD", "EUR", "GBP", "SAR":
		return nil
	}
	return errors.New("unsupported currency")
}
