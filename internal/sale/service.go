package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/internal/inventory"
	"github.com/tillworks/tillpoint-backend/internal/payment"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type checkSequencer interface {
	NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error)
}

type stockAdjuster interface {
	AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error
}

type stockEngine struct{}

func (stockEngine) AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	return inventory.AdjustStock(ctx, tx, productID, delta)
}

// Service commits a finished check atomically: sequence number, check and
// lines, and the matching stock decrements all land in one transaction.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*models.Check, error)
}

// CommitInput is everything needed to turn an in-progress check into a
// persisted sale.
type CommitInput struct {
	ShiftID   uuid.UUID
	CashierID uuid.UUID
	Lines     []discount.Line
	Tender    payment.Tender
}

type service struct {
	tx        txRunner
	checkRepo CheckRepository
	sequencer checkSequencer
	stock     stockAdjuster
}

// NewService builds the sale commit service.
func NewService(tx txRunner, checkRepo CheckRepository, sequencer checkSequencer, stock stockAdjuster) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if checkRepo == nil {
		return nil, fmt.Errorf("check repository required")
	}
	if sequencer == nil {
		return nil, fmt.Errorf("check sequencer required")
	}
	if stock == nil {
		stock = stockEngine{}
	}
	return &service{
		tx:        tx,
		checkRepo: checkRepo,
		sequencer: sequencer,
		stock:     stock,
	}, nil
}

func (s *service) Commit(ctx context.Context, input CommitInput) (*models.Check, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.CashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check contains no items")
	}
	for i := range input.Lines {
		if !input.Lines[i].Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}

	totals := ComputeTotals(input.Lines)
	settlement, err := payment.Settle(totals.Total, input.Tender, hasPricedItems(input.Lines))
	if err != nil {
		return nil, err
	}

	var committed *models.Check
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sequence, seqErr := s.sequencer.NextCheckSequence(ctx, tx, input.ShiftID)
		if seqErr != nil {
			return seqErr
		}

		check := &models.Check{
			ShiftID:        input.ShiftID,
			SequenceNumber: sequence,
			CashierID:      input.CashierID,
			PaymentType:    settlement.Type,
			TotalAmount:    totals.Total,
			DiscountAmount: totals.Discount,
			CashPaid:       settlement.CashCharged,
			CardPaid:       settlement.CardCharged,
			ChangeGiven:    settlement.Change,
			CashRefunded:   decimal.Zero,
			CardRefunded:   decimal.Zero,
			Lines:          make([]models.CheckLine, len(input.Lines)),
		}
		for i, line := range input.Lines {
			check.Lines[i] = models.CheckLine{
				ProductID:      line.ProductID,
				Name:           line.Name,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				DiscountAmount: line.DiscountAmount,
				AppliedRuleID:  line.AppliedRuleID,
			}
		}

		if _, createErr := s.checkRepo.WithTx(tx).Create(ctx, check); createErr != nil {
			return createErr
		}

		for _, line := range input.Lines {
			if adjErr := s.stock.AdjustStock(ctx, tx, line.ProductID, line.Quantity.Neg()); adjErr != nil {
				return adjErr
			}
		}

		committed = check
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func hasPricedItems(lines []discount.Line) bool {
	for i := range lines {
		if lines[i].UnitPrice.IsPositive() {
			return true
		}
	}
	return false
}
