package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
)

// DiscountRule is a management-maintained automatic discount definition.
// The engine only ever reads rules filtered to "currently active".
type DiscountRule struct {
	ID   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string             `gorm:"column:name;not null"`
	Kind enums.DiscountKind `gorm:"column:kind;type:discount_kind;not null"`
	// Value meaning depends on Kind: percent for percentage, amount for
	// fixed_amount, target unit price for fixed_price, unused for gift.
	Value             decimal.Decimal `gorm:"column:value;type:decimal(12,2);not null;default:0"`
	RequiredProductID *uuid.UUID      `gorm:"column:required_product_id;type:uuid"`
	GiftProductID     *uuid.UUID      `gorm:"column:gift_product_id;type:uuid"`
	GiftQty           decimal.Decimal `gorm:"column:gift_qty;type:decimal(12,3);not null;default:1"`
	StartsAt          *time.Time      `gorm:"column:starts_at"`
	EndsAt            *time.Time      `gorm:"column:ends_at"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesAt reports whether the rule is live at the given instant.
func (r DiscountRule) AppliesAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.StartsAt != nil && now.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}
