package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/internal/payment"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

// CheckoutItem is one scanned entry of an incoming check.
type CheckoutItem struct {
	Identifier string
	Quantity   decimal.Decimal
}

// ManualDiscount is an operator-entered check-level discount.
type ManualDiscount struct {
	Value        decimal.Decimal
	IsPercentage bool
}

// CheckoutInput is the full register submission: items, optional manual
// discount, and the tender that settles the check.
type CheckoutInput struct {
	ShiftID        uuid.UUID
	CashierID      uuid.UUID
	Items          []CheckoutItem
	ManualDiscount *ManualDiscount
	Tender         payment.Tender
}

// CheckoutService drives a whole check in one call: builds the lines,
// applies automatic then manual discounts, settles the tender, and commits.
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Check, []string, error)
}

type checkoutService struct {
	catalog productResolver
	stock   stockChecker
	rules   ruleSource
	commit  Service
	now     func() time.Time
}

// NewCheckoutService builds the register checkout orchestrator.
func NewCheckoutService(catalog productResolver, stock stockChecker, rules ruleSource, commit Service) (CheckoutService, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	if rules == nil {
		return nil, fmt.Errorf("rule source required")
	}
	if commit == nil {
		return nil, fmt.Errorf("commit service required")
	}
	return &checkoutService{
		catalog: catalog,
		stock:   stock,
		rules:   rules,
		commit:  commit,
		now:     time.Now,
	}, nil
}

func (s *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*models.Check, []string, error) {
	if len(input.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "check contains no items")
	}

	builder, err := NewBuilder(s.catalog, s.stock, s.rules)
	if err != nil {
		return nil, nil, err
	}

	for _, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		product, err := s.catalog.FindByCodeOrBarcode(ctx, item.Identifier)
		if err != nil {
			return nil, nil, err
		}
		if err := builder.AddItem(ctx, item.Identifier); err != nil {
			return nil, nil, err
		}
		index := lineIndexForProduct(builder.Lines(), product.ID)
		if index < 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "added line not found")
		}
		current := builder.Lines()[index].Quantity
		// AddItem contributes one unit; lift the line to the requested
		// quantity when the submission asked for more than that.
		target := current.Add(item.Quantity).Sub(decimal.NewFromInt(1))
		if !target.Equal(current) {
			if err := builder.ChangeQuantity(ctx, index, target); err != nil {
				return nil, nil, err
			}
		}
	}

	if err := builder.ApplyAutoDiscounts(ctx, s.now()); err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeDependency {
			return nil, nil, err
		}
		// Rule lookup failure fails open: the builder has already reset
		// automatic discounts, so the sale proceeds at full price with
		// a warning for the receipt.
		builder.warnings = append(builder.warnings, typed.Message())
	}

	if input.ManualDiscount != nil {
		if err := builder.ApplyManualDiscount(input.ManualDiscount.Value, input.ManualDiscount.IsPercentage); err != nil {
			return nil, nil, err
		}
	}

	check, err := s.commit.Commit(ctx, CommitInput{
		ShiftID:   input.ShiftID,
		CashierID: input.CashierID,
		Lines:     builder.Lines(),
		Tender:    input.Tender,
	})
	if err != nil {
		return nil, nil, err
	}
	return check, builder.Warnings(), nil
}

func lineIndexForProduct(lines []discount.Line, productID uuid.UUID) int {
	for i := range lines {
		if lines[i].ProductID == productID && !lines[i].IsGift {
			return i
		}
	}
	return -1
}
