package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

// Repository persists checks and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CheckRepository {
	return &Repository{db: tx}
}

// LockByID takes a row lock on the check inside the transaction, so
// concurrent returns against the same sale serialize.
func (r *Repository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	var check models.Check
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&check, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
	}
	return err
}

// Create persists the check together with its lines.
func (r *Repository) Create(ctx context.Context, check *models.Check) (*models.Check, error) {
	if err := r.db.WithContext(ctx).Create(check).Error; err != nil {
		return nil, err
	}
	return check, nil
}

// FindByID loads a check with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	var check models.Check
	err := r.db.WithContext(ctx).Preload("Lines").First(&check, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// FindBySequenceAndShift resolves a check by its per-shift receipt number.
func (r *Repository) FindBySequenceAndShift(ctx context.Context, sequence int64, shiftID uuid.UUID) (*models.Check, error) {
	var check models.Check
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("shift_id = ? AND sequence_number = ?", shiftID, sequence).
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ChecksForShift returns every check recorded in the shift, oldest first.
func (r *Repository) ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error) {
	var checks []models.Check
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("sequence_number ASC").
		Find(&checks).Error
	if err != nil {
		return nil, err
	}
	return checks, nil
}

// ReturnedQuantities sums the already-returned quantity per original line of
// the given sale check. This is the ledger a new return is validated against.
func (r *Repository) ReturnedQuantities(ctx context.Context, originalCheckID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		OriginalLineID uuid.UUID
		Returned       decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.CheckLine{}).
		Select("check_lines.original_line_id AS original_line_id, SUM(check_lines.quantity) AS returned").
		Joins("JOIN checks ON checks.id = check_lines.check_id").
		Where("checks.is_return = ? AND checks.original_check_id = ?", true, originalCheckID).
		Where("check_lines.original_line_id IS NOT NULL").
		Group("check_lines.original_line_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, entry := range rows {
		result[entry.OriginalLineID] = entry.Returned
	}
	return result, nil
}
