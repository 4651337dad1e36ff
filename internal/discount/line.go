package discount

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/money"
)

// Line is one in-progress product entry on the register. It is the working
// representation the evaluator and allocator mutate; persistence converts it
// to a CheckLine only at commit.
type Line struct {
	ProductID      uuid.UUID
	Name           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	AppliedRuleID  *uuid.UUID
	// IsGift marks a zero-price line added by a gift rule. Gift lines never
	// trigger further discounts.
	IsGift bool
}

// Subtotal is quantity times unit price before any discount.
func (l Line) Subtotal() decimal.Decimal {
	return money.Round2(l.Quantity.Mul(l.UnitPrice))
}

// Total is the discounted amount the line contributes to the check.
func (l Line) Total() decimal.Decimal {
	return money.Round2(l.Subtotal().Sub(l.DiscountAmount))
}

// ResetDiscount clears any allocated discount from the line.
func (l *Line) ResetDiscount() {
	l.DiscountAmount = decimal.Zero
	l.AppliedRuleID = nil
}
