package shift

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
)

// ShiftRepository is the persistence surface for shifts.
type ShiftRepository interface {
	WithTx(tx *gorm.DB) ShiftRepository
	CurrentOpen(ctx context.Context) (*models.Shift, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) (*models.Shift, error)
	Save(ctx context.Context, shift *models.Shift) (*models.Shift, error)
	NextNumber(ctx context.Context) (int64, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Shift, error)
	NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error)
}

// CashMovementRepository is the persistence surface for drawer movements.
type CashMovementRepository interface {
	WithTx(tx *gorm.DB) CashMovementRepository
	Record(ctx context.Context, movement *models.CashMovement) (*models.CashMovement, error)
	ForShift(ctx context.Context, shiftID uuid.UUID) ([]models.CashMovement, error)
}
