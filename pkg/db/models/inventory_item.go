package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem tracks the on-hand quantity per product. Quantities are
// decimal because weighed goods sell in fractional units.
type InventoryItem struct {
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:decimal(12,3);not null;default:0"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
