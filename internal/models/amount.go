package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a plain decimal amount such as "-12.50".
// Surrounding whitespace is ignored; anything else invalid is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amountStr)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	return dec, nil
}

// ParseOptionalAmount parses an amount cell where empty means unset.
func ParseOptionalAmount(amountStr string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.NullDecimal{}, nil
	}
	dec, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(dec), nil
}
