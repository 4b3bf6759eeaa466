package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1.00", "100.50", "99999999.99"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

func TestValidateAmount_Zero(t *testing.T) {
	err := ValidateAmount(decimal.Zero)

	if err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

func TestValidateAmount_Negative(t *testing.T) {
	testCases := []string{"-0.01", "-100", "-9999.99"}

	for _, s := range testCases {
		err := ValidateAmount(decimal.RequireFromString(s))
		if err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(decimal.RequireFromString("100000000"))

	if err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		if _, err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		if _, err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateDate_OutOfRange(t *testing.T) {
	testCases := []string{"1999-12-31", "2101-01-01"}

	for _, date := range testCases {
		if _, err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateCurrency_Supported(t *testing.T) {
	testCases := []string{"", "EGP", "USD", "EUR", "GBP", "SAR"}

	for _, code := range testCases {
		if err := ValidateCurrency(code); err != nil {
			t.Errorf("ValidateCurrency(%q) error = %v, want nil", code, err)
		}
	}
}

func TestValidateCurrency_Unsupported(t *testing.T) {
	testCases := []string{"JPY", "egp", "XXX"}

	for _, code := range testCases {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) error = nil, want error", code)
		}
	}
}
