package discount

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	"github.com/tillworks/tillpoint-backend/pkg/money"
)

// GiftLine is a pending zero-price addition produced by a winning gift rule.
// The caller commits it only after confirming gift stock.
type GiftLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	RuleID    uuid.UUID
}

// Evaluation is the outcome of one automatic-discount pass.
type Evaluation struct {
	Lines []Line
	Gifts []GiftLine
}

// Evaluate computes the best automatic discount for each line independently.
// Discounts never stack: per line, the single rule with the maximum potential
// amount wins, earlier rules winning ties. Inputs are copied; the caller's
// slice is never mutated.
func Evaluate(lines []Line, rules []models.DiscountRule) Evaluation {
	result := Evaluation{Lines: make([]Line, len(lines))}
	copy(result.Lines, lines)

	for i := range result.Lines {
		line := &result.Lines[i]
		line.ResetDiscount()
		if line.IsGift {
			continue
		}

		subtotal := line.Subtotal()
		var best *models.DiscountRule
		bestAmount := decimal.Zero
		for r := range rules {
			rule := &rules[r]
			if rule.RequiredProductID != nil && *rule.RequiredProductID != line.ProductID {
				continue
			}
			amount := potentialAmount(*line, subtotal, *rule)
			if best == nil || amount.GreaterThan(bestAmount) {
				best = rule
				bestAmount = amount
			}
		}
		if best == nil {
			continue
		}

		if best.Kind == enums.DiscountKindGift {
			if best.GiftProductID != nil {
				result.Gifts = append(result.Gifts, GiftLine{
					ProductID: *best.GiftProductID,
					Quantity:  giftQuantity(*best),
					RuleID:    best.ID,
				})
			}
			ruleID := best.ID
			line.AppliedRuleID = &ruleID
			continue
		}

		amount := money.Round2(money.Clamp(bestAmount, decimal.Zero, subtotal))
		if amount.IsZero() {
			continue
		}
		ruleID := best.ID
		line.DiscountAmount = amount
		line.AppliedRuleID = &ruleID
	}
	return result
}

func potentialAmount(line Line, subtotal decimal.Decimal, rule models.DiscountRule) decimal.Decimal {
	switch rule.Kind {
	case enums.DiscountKindPercentage:
		return subtotal.Mul(rule.Value).Div(decimal.NewFromInt(100))
	case enums.DiscountKindFixedAmount:
		if rule.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return rule.Value
	case enums.DiscountKindFixedPrice:
		// Only a real markdown when the target price undercuts the unit
		// price; otherwise no discount.
		if rule.Value.GreaterThanOrEqual(line.UnitPrice) {
			return decimal.Zero
		}
		discounted := subtotal.Sub(line.Quantity.Mul(rule.Value))
		if discounted.IsNegative() {
			return decimal.Zero
		}
		return discounted
	case enums.DiscountKindGift:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func giftQuantity(rule models.DiscountRule) decimal.Decimal {
	if rule.GiftQty.IsPositive() {
		return rule.GiftQty
	}
	return decimal.NewFromInt(1)
}
