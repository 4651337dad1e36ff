package shift

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

// Repository persists register shifts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) ShiftRepository {
	return &Repository{db: tx}
}

// CurrentOpen returns the open shift, or nil when every shift is closed.
func (r *Repository) CurrentOpen(ctx context.Context) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).Where("closed_at IS NULL").First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// FindByID loads one shift.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).First(&shift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// Create inserts a new shift row.
func (r *Repository) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// Save writes the full shift row back.
func (r *Repository) Save(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if err := r.db.WithContext(ctx).Save(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// NextNumber returns the next shift sequence number.
func (r *Repository) NextNumber(ctx context.Context) (int64, error) {
	var current int64
	err := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// LockByID loads the shift inside the transaction with a row lock, so close
// and sequence bumps serialize per shift.
func (r *Repository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// NextCheckSequence bumps the shift's check counter inside the transaction
// and returns the new receipt number. The guarded UPDATE makes concurrent
// bumps serialize on the row; closed shifts take no more checks.
func (r *Repository) NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error) {
	res := tx.WithContext(ctx).Exec(`
		UPDATE shifts
		SET check_counter = check_counter + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND closed_at IS NULL
	`, shiftID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var shift models.Shift
		err := tx.WithContext(ctx).First(&shift, "id = ?", shiftID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		if err != nil {
			return 0, err
		}
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "shift already closed")
	}

	var counter int64
	err := tx.WithContext(ctx).
		Model(&models.Shift{}).
		Select("check_counter").
		Where("id = ?", shiftID).
		Scan(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter, nil
}
