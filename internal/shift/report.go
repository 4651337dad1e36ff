package shift

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	"github.com/tillworks/tillpoint-backend/pkg/money"
)

// Report is the reconciliation arithmetic over one shift. Mid-shift it is an
// X-report snapshot; at close the same figures freeze into the Z-report.
type Report struct {
	ShiftID      uuid.UUID       `json:"shift_id"`
	ShiftNumber  int64           `json:"shift_number"`
	OpenedAt     time.Time       `json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	StartCash    decimal.Decimal `json:"start_cash"`
	CheckCount   int             `json:"check_count"`
	ReturnCount  int             `json:"return_count"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalReturns decimal.Decimal `json:"total_returns"`
	CashSales    decimal.Decimal `json:"cash_sales"`
	CardSales    decimal.Decimal `json:"card_sales"`
	CashReturned decimal.Decimal `json:"cash_returned"`
	CardReturned decimal.Decimal `json:"card_returned"`
	CashAdded    decimal.Decimal `json:"cash_added"`
	CashRemoved  decimal.Decimal `json:"cash_removed"`
	// TheoreticalCash = startCash + cashSales + cashAdded - cashRemoved -
	// cashReturned.
	TheoreticalCash decimal.Decimal  `json:"theoretical_cash"`
	ActualCash      *decimal.Decimal `json:"actual_cash,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
}

// BuildReport folds the shift's checks and cash movements into report
// figures. Pure computation; callers pass whatever snapshot they hold.
func BuildReport(shift models.Shift, checks []models.Check, movements []models.CashMovement) Report {
	report := Report{
		ShiftID:      shift.ID,
		ShiftNumber:  shift.Number,
		OpenedAt:     shift.OpenedAt,
		ClosedAt:     shift.ClosedAt,
		StartCash:    shift.StartCash,
		TotalSales:   decimal.Zero,
		TotalReturns: decimal.Zero,
		CashSales:    decimal.Zero,
		CardSales:    decimal.Zero,
		CashReturned: decimal.Zero,
		CardReturned: decimal.Zero,
		CashAdded:    decimal.Zero,
		CashRemoved:  decimal.Zero,
	}

	for _, check := range checks {
		if check.IsReturn {
			report.ReturnCount++
			report.TotalReturns = report.TotalReturns.Add(check.TotalAmount)
			report.CashReturned = report.CashReturned.Add(check.CashRefunded)
			report.CardReturned = report.CardReturned.Add(check.CardRefunded)
			continue
		}
		report.CheckCount++
		report.TotalSales = report.TotalSales.Add(check.TotalAmount)
		report.CashSales = report.CashSales.Add(check.CashPaid)
		report.CardSales = report.CardSales.Add(check.CardPaid)
	}

	for _, movement := range movements {
		switch movement.Kind {
		case enums.CashMovementKindCashIn:
			report.CashAdded = report.CashAdded.Add(movement.Amount)
		case enums.CashMovementKindCashOut:
			report.CashRemoved = report.CashRemoved.Add(movement.Amount)
		}
	}

	report.TotalSales = money.Round2(report.TotalSales)
	report.TotalReturns = money.Round2(report.TotalReturns)
	report.CashSales = money.Round2(report.CashSales)
	report.CardSales = money.Round2(report.CardSales)
	report.CashReturned = money.Round2(report.CashReturned)
	report.CardReturned = money.Round2(report.CardReturned)
	report.CashAdded = money.Round2(report.CashAdded)
	report.CashRemoved = money.Round2(report.CashRemoved)
	report.TheoreticalCash = money.Round2(
		shift.StartCash.
			Add(report.CashSales).
			Add(report.CashAdded).
			Sub(report.CashRemoved).
			Sub(report.CashReturned))
	return report
}
