package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/money"
)

// CheckLine captures the snapshot of one product entry within a check.
type CheckLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckID        uuid.UUID       `gorm:"column:check_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:decimal(12,3);not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:decimal(12,2);not null;default:0"`
	AppliedRuleID  *uuid.UUID      `gorm:"column:applied_rule_id;type:uuid"`
	// OriginalLineID links a return line to the sold line it reverses,
	// which is what makes the returned-quantity ledger queryable.
	OriginalLineID *uuid.UUID `gorm:"column:original_line_id;type:uuid;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal is quantity times unit price before any discount.
func (l CheckLine) Subtotal() decimal.Decimal {
	return money.Round2(l.Quantity.Mul(l.UnitPrice))
}

// LineTotal is the discounted amount the line contributes to the check total.
func (l CheckLine) LineTotal() decimal.Decimal {
	return money.Round2(l.Subtotal().Sub(l.DiscountAmount))
}
