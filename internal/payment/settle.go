package payment

import (
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/money"
)

// Tender is what the customer offers against the check total. The card
// leg is never tendered as an amount: card and mixed settlements charge
// whatever the cash leg leaves of the total.
type Tender struct {
	Type enums.PaymentType
	Cash decimal.Decimal
	// ConfirmFree acknowledges completing a fully discounted check that
	// still carries priced items.
	ConfirmFree bool
}

// Settlement is the validated split to persist on the check.
type Settlement struct {
	Type        enums.PaymentType
	CashCharged decimal.Decimal
	CardCharged decimal.Decimal
	Change      decimal.Decimal
}

// Settle validates the tender against the final total and computes the
// change and per-channel split. Nothing is persisted here; a rejection
// leaves no state behind.
func Settle(total decimal.Decimal, tender Tender, hasPricedItems bool) (Settlement, error) {
	if !tender.Type.IsValid() {
		return Settlement{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
	}
	if tender.Cash.IsNegative() {
		return Settlement{}, pkgerrors.New(pkgerrors.CodeValidation, "tendered cash cannot be negative")
	}
	if total.IsNegative() {
		return Settlement{}, pkgerrors.New(pkgerrors.CodeValidation, "check total cannot be negative")
	}

	if total.IsZero() {
		// A pure gift check settles itself; a fully discounted check with
		// priced items needs an explicit confirmation.
		if hasPricedItems && !tender.ConfirmFree {
			return Settlement{}, pkgerrors.New(pkgerrors.CodeValidation, "free completion must be confirmed")
		}
		return Settlement{
			Type:        enums.PaymentTypeCash,
			CashCharged: decimal.Zero,
			CardCharged: decimal.Zero,
			Change:      decimal.Zero,
		}, nil
	}

	switch tender.Type {
	case enums.PaymentTypeCash:
		if tender.Cash.LessThan(total) {
			return Settlement{}, insufficientPayment()
		}
		return Settlement{
			Type:        enums.PaymentTypeCash,
			CashCharged: total,
			Change:      money.Round2(tender.Cash.Sub(total)),
			CardCharged: decimal.Zero,
		}, nil

	case enums.PaymentTypeCard:
		return Settlement{
			Type:        enums.PaymentTypeCard,
			CardCharged: total,
			CashCharged: decimal.Zero,
			Change:      decimal.Zero,
		}, nil

	case enums.PaymentTypeMixed:
		if tender.Cash.GreaterThanOrEqual(total) {
			// Degrades to a pure cash sale.
			return Settlement{
				Type:        enums.PaymentTypeCash,
				CashCharged: total,
				Change:      money.Round2(tender.Cash.Sub(total)),
				CardCharged: decimal.Zero,
			}, nil
		}
		// The card picks up whatever the cash does not cover.
		cashCharged := tender.Cash
		cardCharged := money.Round2(total.Sub(cashCharged))
		return Settlement{
			Type:        enums.PaymentTypeMixed,
			CashCharged: cashCharged,
			CardCharged: cardCharged,
			Change:      decimal.Zero,
		}, nil
	}
	return Settlement{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
}

func insufficientPayment() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "insufficient payment for check total")
}
