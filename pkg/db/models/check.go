package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
)

// Check is a completed sale or return transaction within a shift.
// Once persisted it is an immutable historical record.
type Check struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID         uuid.UUID         `gorm:"column:shift_id;type:uuid;not null;index"`
	SequenceNumber  int64             `gorm:"column:sequence_number;not null"`
	CashierID       uuid.UUID         `gorm:"column:cashier_id;type:uuid;not null"`
	IsReturn        bool              `gorm:"column:is_return;not null;default:false"`
	OriginalCheckID *uuid.UUID        `gorm:"column:original_check_id;type:uuid;index"`
	PaymentType     enums.PaymentType `gorm:"column:payment_type;type:payment_type;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:decimal(12,2);not null"`
	DiscountAmount  decimal.Decimal   `gorm:"column:discount_amount;type:decimal(12,2);not null;default:0"`
	// CashPaid/CardPaid are amounts charged per channel. For a return both
	// are zero; the refund split lives in CashRefunded/CardRefunded.
	CashPaid     decimal.Decimal `gorm:"column:cash_paid;type:decimal(12,2);not null;default:0"`
	CardPaid     decimal.Decimal `gorm:"column:card_paid;type:decimal(12,2);not null;default:0"`
	ChangeGiven  decimal.Decimal `gorm:"column:change_given;type:decimal(12,2);not null;default:0"`
	CashRefunded decimal.Decimal `gorm:"column:cash_refunded;type:decimal(12,2);not null;default:0"`
	CardRefunded decimal.Decimal `gorm:"column:card_refunded;type:decimal(12,2);not null;default:0"`
	Lines        []CheckLine     `gorm:"foreignKey:CheckID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
