package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to two decimal places, half away from zero.
// Every amount the engine returns or folds into a parent total goes through
// this first so float-style accumulation drift cannot appear.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// Clamp bounds value to the inclusive [min, max] range.
func Clamp(value, min, max decimal.Decimal) decimal.Decimal {
	if value.LessThan(min) {
		return min
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

// Zero is the canonical zero amount.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// FromString parses a decimal amount, returning zero on empty input.
func FromString(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
