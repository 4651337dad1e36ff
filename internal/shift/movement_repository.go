package shift

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
)

// MovementRepository records the append-only cash movement log.
type MovementRepository struct {
	db *gorm.DB
}

// NewMovementRepository builds a repository tied to the provided GORM DB.
func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *MovementRepository) WithTx(tx *gorm.DB) CashMovementRepository {
	return &MovementRepository{db: tx}
}

// Record appends one movement. Movements are never updated or deleted.
func (r *MovementRepository) Record(ctx context.Context, movement *models.CashMovement) (*models.CashMovement, error) {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

// ForShift lists the shift's movements in recording order.
func (r *MovementRepository) ForShift(ctx context.Context, shiftID uuid.UUID) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
