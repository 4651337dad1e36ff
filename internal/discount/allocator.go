package discount

import (
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/money"
)

var residualTolerance = decimal.RequireFromString("0.001")

// Allocate distributes a single check-level manual discount proportionally
// across the lines, mutating their DiscountAmount in place, and returns the
// rounded target discount that was spread. Every line except the last gets
// its proportional rounded share; the last line absorbs the remainder so the
// allocated amounts sum exactly to the target. A final reconciliation pushes
// any residual left by clamping onto the first line that can absorb it.
func Allocate(lines []Line, value decimal.Decimal, isPercentage bool) decimal.Decimal {
	checkSubtotal := decimal.Zero
	for i := range lines {
		checkSubtotal = checkSubtotal.Add(lines[i].Subtotal())
	}
	if !checkSubtotal.IsPositive() {
		return decimal.Zero
	}

	target := targetDiscount(checkSubtotal, value, isPercentage)
	if !target.IsPositive() {
		return decimal.Zero
	}

	allocated := decimal.Zero
	for i := range lines {
		line := &lines[i]
		line.ResetDiscount()
		subtotal := line.Subtotal()

		var share decimal.Decimal
		if i == len(lines)-1 {
			share = target.Sub(allocated)
		} else {
			share = money.Round2(target.Mul(subtotal).Div(checkSubtotal))
		}
		share = money.Clamp(share, decimal.Zero, subtotal)
		line.DiscountAmount = share
		allocated = allocated.Add(share)
	}

	// Clamping on the last line can leave the sum short; let the first line
	// with headroom take the residual.
	residual := target.Sub(allocated)
	if residual.Abs().GreaterThan(residualTolerance) {
		for i := range lines {
			line := &lines[i]
			adjusted := line.DiscountAmount.Add(residual)
			if adjusted.IsNegative() || adjusted.GreaterThan(line.Subtotal()) {
				continue
			}
			line.DiscountAmount = money.Round2(adjusted)
			break
		}
	}
	return target
}

func targetDiscount(checkSubtotal, value decimal.Decimal, isPercentage bool) decimal.Decimal {
	if isPercentage {
		pct := value
		if pct.GreaterThan(decimal.NewFromInt(100)) {
			pct = decimal.NewFromInt(100)
		}
		return money.Round2(checkSubtotal.Mul(pct).Div(decimal.NewFromInt(100)))
	}
	if value.GreaterThan(checkSubtotal) {
		return money.Round2(checkSubtotal)
	}
	return money.Round2(value)
}
