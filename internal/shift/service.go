package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type checkSource interface {
	ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error)
}

// Service owns the shift lifecycle: open, cash movements, X-report snapshots,
// and the terminal close with frozen Z-report figures.
type Service interface {
	Open(ctx context.Context, cashierID uuid.UUID, startCash decimal.Decimal) (*models.Shift, error)
	Close(ctx context.Context, shiftID, closingCashierID uuid.UUID, actualCash decimal.Decimal) (*Report, error)
	Current(ctx context.Context) (*models.Shift, error)
	XReport(ctx context.Context, shiftID uuid.UUID) (*Report, error)
	RecordCashMovement(ctx context.Context, input CashMovementInput) (*models.CashMovement, error)
}

// CashMovementInput describes one manual drawer adjustment.
type CashMovementInput struct {
	CashierID uuid.UUID
	Kind      enums.CashMovementKind
	Amount    decimal.Decimal
	Reason    string
}

type service struct {
	tx        txRunner
	shifts    ShiftRepository
	movements CashMovementRepository
	checks    checkSource
	now       func() time.Time
}

// NewService builds the shift service.
func NewService(tx txRunner, shifts ShiftRepository, movements CashMovementRepository, checks checkSource) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if shifts == nil {
		return nil, fmt.Errorf("shift repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if checks == nil {
		return nil, fmt.Errorf("check source required")
	}
	return &service{
		tx:        tx,
		shifts:    shifts,
		movements: movements,
		checks:    checks,
		now:       time.Now,
	}, nil
}

// Open starts a new shift. The persistence layer carries a partial unique
// index on open shifts, so even two racing opens cannot both land; the
// in-transaction recheck keeps the common path on a clean error.
func (s *service) Open(ctx context.Context, cashierID uuid.UUID, startCash decimal.Decimal) (*models.Shift, error) {
	if cashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if startCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start cash cannot be negative")
	}

	var opened *models.Shift
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shifts := s.shifts.WithTx(tx)

		existing, err := shifts.CurrentOpen(ctx)
		if err != nil {
			return err
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a shift is already open")
		}

		number, err := shifts.NextNumber(ctx)
		if err != nil {
			return err
		}
		shift := &models.Shift{
			Number:           number,
			OpenedAt:         s.now().UTC(),
			OpeningCashierID: cashierID,
			StartCash:        money.Round2(startCash),
		}
		if _, err := shifts.Create(ctx, shift); err != nil {
			if db.IsUniqueViolation(err, "uniq_shifts_single_open") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "a shift is already open")
			}
			return err
		}
		opened = shift
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// Close freezes the shift: figures are computed once inside the closing
// transaction and never recomputed afterwards.
func (s *service) Close(ctx context.Context, shiftID, closingCashierID uuid.UUID, actualCash decimal.Decimal) (*Report, error) {
	if closingCashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closing cashier id required")
	}
	if actualCash.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted cash cannot be negative")
	}

	var report *Report
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shift, err := s.shifts.LockByID(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shift already closed")
		}

		built, err := s.buildReport(ctx, tx, *shift)
		if err != nil {
			return err
		}

		actual := money.Round2(actualCash)
		difference := money.Round2(actual.Sub(built.TheoreticalCash))
		closedAt := s.now().UTC()

		shift.ClosedAt = &closedAt
		shift.ClosingCashierID = &closingCashierID
		shift.TotalSales = &built.TotalSales
		shift.TotalReturns = &built.TotalReturns
		shift.CashSales = &built.CashSales
		shift.CardSales = &built.CardSales
		shift.CashAdded = &built.CashAdded
		shift.CashRemoved = &built.CashRemoved
		shift.EndCashTheoretic = &built.TheoreticalCash
		shift.EndCashActual = &actual
		shift.Difference = &difference
		if _, err := s.shifts.WithTx(tx).Save(ctx, shift); err != nil {
			return err
		}

		built.ClosedAt = &closedAt
		built.ActualCash = &actual
		built.Difference = &difference
		report = &built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Current returns the open shift, or a not-found error when none is open.
func (s *service) Current(ctx context.Context) (*models.Shift, error) {
	shift, err := s.shifts.CurrentOpen(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift")
	}
	return shift, nil
}

// XReport computes a read-only snapshot of the shift's figures. For a closed
// shift it reproduces the frozen Z-report arithmetic without touching it.
func (s *service) XReport(ctx context.Context, shiftID uuid.UUID) (*Report, error) {
	shift, err := s.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	report, err := s.buildReport(ctx, nil, *shift)
	if err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		report.ActualCash = shift.EndCashActual
		report.Difference = shift.Difference
	}
	return &report, nil
}

// RecordCashMovement appends a cash-in or cash-out to the open shift.
func (s *service) RecordCashMovement(ctx context.Context, input CashMovementInput) (*models.CashMovement, error) {
	if input.CashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cash movement kind")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var recorded *models.CashMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shift, err := s.shifts.WithTx(tx).CurrentOpen(ctx)
		if err != nil {
			return err
		}
		if shift == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no open shift")
		}
		movement := &models.CashMovement{
			ShiftID:   shift.ID,
			CashierID: input.CashierID,
			Kind:      input.Kind,
			Amount:    money.Round2(input.Amount),
			Reason:    input.Reason,
		}
		recorded, err = s.movements.WithTx(tx).Record(ctx, movement)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func (s *service) buildReport(ctx context.Context, tx *gorm.DB, shift models.Shift) (Report, error) {
	movements := s.movements
	if tx != nil {
		movements = s.movements.WithTx(tx)
	}

	shiftChecks, err := s.checks.ChecksForShift(ctx, shift.ID)
	if err != nil {
		return Report{}, err
	}
	shiftMovements, err := movements.ForShift(ctx, shift.ID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(shift, shiftChecks, shiftMovements), nil
}
