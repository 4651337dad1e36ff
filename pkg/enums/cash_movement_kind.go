package enums

import "fmt"

// CashMovementKind distinguishes manual drawer deposits from withdrawals.
type CashMovementKind string

const (
	CashMovementKindCashIn  CashMovementKind = "cash_in"
	CashMovementKindCashOut CashMovementKind = "cash_out"
)

var validCashMovementKinds = []CashMovementKind{
	CashMovementKindCashIn,
	CashMovementKindCashOut,
}

// IsValid reports whether the value is a known CashMovementKind.
func (k CashMovementKind) IsValid() bool {
	for _, candidate := range validCashMovementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseCashMovementKind converts raw input into a CashMovementKind.
func ParseCashMovementKind(value string) (CashMovementKind, error) {
	for _, candidate := range validCashMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cash movement kind %q", value)
}
