package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/money"
)

type productResolver interface {
	FindByCodeOrBarcode(ctx context.Context, identifier string) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type stockChecker interface {
	StockQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

type ruleSource interface {
	ActiveRules(ctx context.Context, now time.Time) ([]models.DiscountRule, error)
}

// Totals is the recomputed financial summary of the in-progress check.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Builder owns one in-progress check: its lines, discount state, and totals.
// Every mutating call recomputes totals. The builder is not safe for
// concurrent use; one cashier drives one builder at a time.
type Builder struct {
	catalog productResolver
	stock   stockChecker
	rules   ruleSource

	lines                 []discount.Line
	totals                Totals
	manualDiscountApplied bool
	warnings              []string
}

// NewBuilder starts an empty check.
func NewBuilder(catalog productResolver, stock stockChecker, rules ruleSource) (*Builder, error) {
	if catalog == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	if rules == nil {
		return nil, fmt.Errorf("rule source required")
	}
	return &Builder{
		catalog: catalog,
		stock:   stock,
		rules:   rules,
		totals:  Totals{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero},
	}, nil
}

// Lines returns a copy of the current line items.
func (b *Builder) Lines() []discount.Line {
	out := make([]discount.Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Totals returns the current financial summary.
func (b *Builder) Totals() Totals {
	return b.totals
}

// Warnings drains non-fatal notices (dropped gifts, skipped discounts).
func (b *Builder) Warnings() []string {
	out := b.warnings
	b.warnings = nil
	return out
}

// AddItem resolves the scanned identifier and merges one unit into an
// existing line or appends a new line at catalog price. Adding an item
// invalidates a previously applied manual discount.
func (b *Builder) AddItem(ctx context.Context, identifier string) error {
	product, err := b.catalog.FindByCodeOrBarcode(ctx, identifier)
	if err != nil {
		return err
	}

	one := decimal.NewFromInt(1)
	if err := b.verifyStock(ctx, product.ID, one); err != nil {
		return err
	}

	b.invalidateManualDiscount()
	for i := range b.lines {
		if b.lines[i].ProductID == product.ID && !b.lines[i].IsGift {
			b.lines[i].Quantity = b.lines[i].Quantity.Add(one)
			b.recompute()
			return nil
		}
	}
	b.lines = append(b.lines, discount.Line{
		ProductID:      product.ID,
		Name:           product.Name,
		Quantity:       one,
		UnitPrice:      product.Price,
		DiscountAmount: decimal.Zero,
	})
	b.recompute()
	return nil
}

// ChangeQuantity sets a line to the given quantity. Increases reverify
// available stock for the delta only.
func (b *Builder) ChangeQuantity(ctx context.Context, lineIndex int, quantity decimal.Decimal) error {
	if lineIndex < 0 || lineIndex >= len(b.lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, "line does not exist")
	}
	if !quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line := &b.lines[lineIndex]
	delta := quantity.Sub(line.Quantity)
	if delta.IsPositive() {
		if err := b.verifyStock(ctx, line.ProductID, delta); err != nil {
			return err
		}
	}
	b.invalidateManualDiscount()
	line.Quantity = quantity
	b.recompute()
	return nil
}

// RemoveOrReduce takes qty units off a line, dropping it entirely when qty
// covers the full remaining quantity.
func (b *Builder) RemoveOrReduce(lineIndex int, qty decimal.Decimal) error {
	if lineIndex < 0 || lineIndex >= len(b.lines) {
		return pkgerrors.New(pkgerrors.CodeValidation, "line does not exist")
	}
	if !qty.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	b.invalidateManualDiscount()
	line := &b.lines[lineIndex]
	if qty.GreaterThanOrEqual(line.Quantity) {
		b.lines = append(b.lines[:lineIndex], b.lines[lineIndex+1:]...)
	} else {
		line.Quantity = line.Quantity.Sub(qty)
	}
	b.recompute()
	return nil
}

// ApplyAutoDiscounts runs the evaluator on a snapshot of the current lines
// and swaps the state in atomically. A rule lookup failure fails open: all
// automatic discounts reset to zero and the error is surfaced as a warning
// return. Gifts whose stock is insufficient are dropped individually.
func (b *Builder) ApplyAutoDiscounts(ctx context.Context, now time.Time) error {
	rules, err := b.rules.ActiveRules(ctx, now)
	if err != nil {
		for i := range b.lines {
			b.lines[i].ResetDiscount()
		}
		b.dropGiftLines()
		b.manualDiscountApplied = false
		b.recompute()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discount rules unavailable")
	}

	b.dropGiftLines()
	result := discount.Evaluate(b.lines, rules)

	lines := result.Lines
	for _, gift := range result.Gifts {
		available, stockErr := b.stock.StockQuantity(ctx, gift.ProductID)
		if stockErr != nil || available.LessThan(gift.Quantity) {
			b.warnings = append(b.warnings, fmt.Sprintf("gift for rule %s skipped: insufficient stock", gift.RuleID))
			continue
		}
		product, prodErr := b.catalog.FindByID(ctx, gift.ProductID)
		name := ""
		if prodErr == nil {
			name = product.Name
		}
		ruleID := gift.RuleID
		lines = append(lines, discount.Line{
			ProductID:     gift.ProductID,
			Name:          name,
			Quantity:      gift.Quantity,
			UnitPrice:     decimal.Zero,
			AppliedRuleID: &ruleID,
			IsGift:        true,
		})
	}

	b.lines = lines
	b.manualDiscountApplied = false
	b.recompute()
	return nil
}

// ApplyManualDiscount spreads a check-level discount across the lines and
// marks the manual flag that a later recompute or item change clears.
func (b *Builder) ApplyManualDiscount(value decimal.Decimal, isPercentage bool) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	discount.Allocate(b.lines, value, isPercentage)
	b.manualDiscountApplied = true
	b.recompute()
	return nil
}

// ManualDiscountApplied reports whether a manual discount is currently live.
func (b *Builder) ManualDiscountApplied() bool {
	return b.manualDiscountApplied
}

// HasPricedItems reports whether any line carries a nonzero unit price.
func (b *Builder) HasPricedItems() bool {
	for i := range b.lines {
		if b.lines[i].UnitPrice.IsPositive() {
			return true
		}
	}
	return false
}

func (b *Builder) verifyStock(ctx context.Context, productID uuid.UUID, needed decimal.Decimal) error {
	available, err := b.stock.StockQuantity(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stock lookup failed")
	}
	if available.LessThan(needed) {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	}
	return nil
}

func (b *Builder) invalidateManualDiscount() {
	if !b.manualDiscountApplied {
		return
	}
	for i := range b.lines {
		b.lines[i].ResetDiscount()
	}
	b.manualDiscountApplied = false
}

func (b *Builder) dropGiftLines() {
	kept := b.lines[:0]
	for _, line := range b.lines {
		if !line.IsGift {
			kept = append(kept, line)
		}
	}
	b.lines = kept
}

func (b *Builder) recompute() {
	b.totals = ComputeTotals(b.lines)
}

// ComputeTotals folds the lines into subtotal, discount, and rounded total.
func ComputeTotals(lines []discount.Line) Totals {
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for i := range lines {
		subtotal = subtotal.Add(lines[i].Subtotal())
		discountTotal = discountTotal.Add(lines[i].DiscountAmount)
	}
	return Totals{
		Subtotal: money.Round2(subtotal),
		Discount: money.Round2(discountTotal),
		Total:    money.Round2(subtotal.Sub(discountTotal)),
	}
}
