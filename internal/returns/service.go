package returns

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/internal/inventory"
	"github.com/tillworks/tillpoint-backend/internal/sale"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/money"
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

// Service resolves a return against an original sale: scales discounts
// proportionally, derives the refund channel from the original payment type,
// and persists the inverse check plus stock reversal atomically.
type Service interface {
	Resolve(ctx context.Context, input ReturnInput) (*models.Check, error)
}

// ReturnInput selects lines of an original sale for return.
type ReturnInput struct {
	OriginalCheckID uuid.UUID
	ShiftID         uuid.UUID
	CashierID       uuid.UUID
	Items           []ReturnItem
}

// ReturnItem requests a quantity back from one original line.
type ReturnItem struct {
	OriginalLineID uuid.UUID
	Quantity       decimal.Decimal
}

type service struct {
	tx        txRunner
	checkRepo sale.CheckRepository
	sequencer checkSequencer
	stock     stockAdjuster
}

// NewService builds the return resolver.
func NewService(tx txRunner, checkRepo sale.CheckRepository, sequencer checkSequencer, stock stockAdjuster) (Service, error) {
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

func (s *service) Resolve(ctx context.Context, input ReturnInput) (*models.Check, error) {
	if input.OriginalCheckID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "original check id required")
	}
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.CashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no return items selected")
	}
	for _, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return quantity must be positive")
		}
	}

	var resolved *models.Check
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.checkRepo.WithTx(tx)

		// Lock the original so concurrent returns against the same sale
		// serialize on the ledger check.
		if err := repo.LockByID(ctx, tx, input.OriginalCheckID); err != nil {
			return err
		}
		original, err := repo.FindByID(ctx, input.OriginalCheckID)
		if err != nil {
			// Fail closed: without the original the refund channel cannot
			// be derived.
			return err
		}
		if original.IsReturn {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot return a return check")
		}

		alreadyReturned, err := repo.ReturnedQuantities(ctx, original.ID)
		if err != nil {
			return err
		}

		lines, returnTotal, returnDiscount, err := buildReturnLines(original, input.Items, alreadyReturned)
		if err != nil {
			return err
		}

		cashRefund, cardRefund := RefundSplit(original.PaymentType, returnTotal, original.CardPaid)

		sequence, err := s.sequencer.NextCheckSequence(ctx, tx, input.ShiftID)
		if err != nil {
			return err
		}

		check := &models.Check{
			ShiftID:         input.ShiftID,
			SequenceNumber:  sequence,
			CashierID:       input.CashierID,
			IsReturn:        true,
			OriginalCheckID: &original.ID,
			PaymentType:     refundChannelType(cashRefund, cardRefund),
			TotalAmount:     returnTotal,
			DiscountAmount:  returnDiscount,
			CashPaid:        decimal.Zero,
			CardPaid:        decimal.Zero,
			ChangeGiven:     decimal.Zero,
			CashRefunded:    cashRefund,
			CardRefunded:    cardRefund,
			Lines:           lines,
		}
		if _, err := repo.Create(ctx, check); err != nil {
			return err
		}

		for _, line := range lines {
			if err := s.stock.AdjustStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		resolved = check
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// RefundSplit derives the cash/card refund amounts from the original payment
// type. Mixed refunds go to the card first, capped at what the card paid.
func RefundSplit(original enums.PaymentType, returnTotal, originalCardPaid decimal.Decimal) (cash, card decimal.Decimal) {
	switch original {
	case enums.PaymentTypeCash:
		return returnTotal, decimal.Zero
	case enums.PaymentTypeCard:
		return decimal.Zero, returnTotal
	case enums.PaymentTypeMixed:
		card = decimal.Min(returnTotal, originalCardPaid)
		cash = money.Round2(returnTotal.Sub(card))
		return cash, card
	default:
		return returnTotal, decimal.Zero
	}
}

func refundChannelType(cashRefund, cardRefund decimal.Decimal) enums.PaymentType {
	switch {
	case cashRefund.IsPositive() && cardRefund.IsPositive():
		return enums.PaymentTypeMixed
	case cardRefund.IsPositive():
		return enums.PaymentTypeCard
	default:
		return enums.PaymentTypeCash
	}
}

func buildReturnLines(original *models.Check, items []ReturnItem, alreadyReturned map[uuid.UUID]decimal.Decimal) ([]models.CheckLine, decimal.Decimal, decimal.Decimal, error) {
	byID := make(map[uuid.UUID]models.CheckLine, len(original.Lines))
	for _, line := range original.Lines {
		byID[line.ID] = line
	}

	lines := make([]models.CheckLine, 0, len(items))
	returnTotal := decimal.Zero
	returnDiscount := decimal.Zero
	for _, item := range items {
		origLine, ok := byID[item.OriginalLineID]
		if !ok {
			return nil, decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "return line not part of original check")
		}

		remaining := origLine.Quantity
		if returned, ok := alreadyReturned[origLine.ID]; ok {
			remaining = remaining.Sub(returned)
		}
		if item.Quantity.GreaterThan(remaining) {
			return nil, decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("return quantity exceeds remaining returnable amount for %s", origLine.Name))
		}

		lineDiscount := money.Round2(origLine.DiscountAmount.Mul(item.Quantity).Div(origLine.Quantity))
		lineTotal := money.Round2(item.Quantity.Mul(origLine.UnitPrice).Sub(lineDiscount))

		originalLineID := origLine.ID
		lines = append(lines, models.CheckLine{
			ProductID:      origLine.ProductID,
			Name:           origLine.Name,
			Quantity:       item.Quantity,
			UnitPrice:      origLine.UnitPrice,
			DiscountAmount: lineDiscount,
			AppliedRuleID:  origLine.AppliedRuleID,
			OriginalLineID: &originalLineID,
		})
		returnTotal = returnTotal.Add(lineTotal)
		returnDiscount = returnDiscount.Add(lineDiscount)
	}
	return lines, money.Round2(returnTotal), money.Round2(returnDiscount), nil
}
