package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

// Repository tracks on-hand stock per product.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// StockQuantity returns the current on-hand quantity. A product without an
// inventory row has zero stock.
func (r *Repository) StockQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return item.Quantity, nil
}

// AdjustStock applies a signed delta to the product's stock inside the
// provided transaction. The WHERE guard keeps the update atomic: a negative
// delta that would take stock below zero touches no rows and fails with an
// insufficient-stock conflict, rolling the whole transaction back.
func AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required for stock adjustment")
	}
	if delta.IsZero() {
		return nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND quantity + ? >= 0
	`, delta, productID, delta)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if delta.IsNegative() {
		// Either the row is missing or stock is too low; both mean the
		// sale cannot take this quantity.
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for product %s", productID))
	}

	item := models.InventoryItem{ProductID: productID, Quantity: delta}
	return tx.WithContext(ctx).Create(&item).Error
}

// SetStock overwrites the on-hand quantity, creating the row when missing.
// Used by the management surface, not the sale path.
func (r *Repository) SetStock(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) (*models.InventoryItem, error) {
	if quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	item := models.InventoryItem{ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
