package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
)

// CheckRepository defines persistence operations for checks and their lines.
type CheckRepository interface {
	WithTx(tx *gorm.DB) CheckRepository
	Create(ctx context.Context, check *models.Check) (*models.Check, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Check, error)
	FindBySequenceAndShift(ctx context.Context, sequence int64, shiftID uuid.UUID) (*models.Check, error)
	ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error)
	ReturnedQuantities(ctx context.Context, originalCheckID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}
