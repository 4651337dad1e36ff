package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is a bounded register session. Close figures stay NULL while the
// shift is open and are written exactly once at close, never recomputed.
type Shift struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number           int64           `gorm:"column:number;not null;uniqueIndex"`
	OpenedAt         time.Time       `gorm:"column:opened_at;not null"`
	ClosedAt         *time.Time      `gorm:"column:closed_at"`
	OpeningCashierID uuid.UUID       `gorm:"column:opening_cashier_id;type:uuid;not null"`
	ClosingCashierID *uuid.UUID      `gorm:"column:closing_cashier_id;type:uuid"`
	StartCash        decimal.Decimal `gorm:"column:start_cash;type:decimal(12,2);not null"`
	// CheckCounter feeds per-shift check sequence numbers; bumped inside
	// the same transaction that persists the check.
	CheckCounter     int64            `gorm:"column:check_counter;not null;default:0"`
	TotalSales       *decimal.Decimal `gorm:"column:total_sales;type:decimal(12,2)"`
	TotalReturns     *decimal.Decimal `gorm:"column:total_returns;type:decimal(12,2)"`
	CashSales        *decimal.Decimal `gorm:"column:cash_sales;type:decimal(12,2)"`
	CardSales        *decimal.Decimal `gorm:"column:card_sales;type:decimal(12,2)"`
	CashAdded        *decimal.Decimal `gorm:"column:cash_added;type:decimal(12,2)"`
	CashRemoved      *decimal.Decimal `gorm:"column:cash_removed;type:decimal(12,2)"`
	EndCashTheoretic *decimal.Decimal `gorm:"column:end_cash_theoretic;type:decimal(12,2)"`
	EndCashActual    *decimal.Decimal `gorm:"column:end_cash_actual;type:decimal(12,2)"`
	Difference       *decimal.Decimal `gorm:"column:difference;type:decimal(12,2)"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the shift has not been closed yet.
func (s Shift) IsOpen() bool {
	return s.ClosedAt == nil
}
