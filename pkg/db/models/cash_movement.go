package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
)

// CashMovement is an append-only manual drawer adjustment within a shift.
// Movements are never edited or deleted once recorded.
type CashMovement struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID   uuid.UUID              `gorm:"column:shift_id;type:uuid;not null;index"`
	CashierID uuid.UUID              `gorm:"column:cashier_id;type:uuid;not null"`
	Kind      enums.CashMovementKind `gorm:"column:kind;type:cash_movement_kind;not null"`
	Amount    decimal.Decimal        `gorm:"column:amount;type:decimal(12,2);not null"`
	Reason    string                 `gorm:"column:reason;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
