package discount

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func allocLines(prices ...string) []Line {
	lines := make([]Line, len(prices))
	for i, price := range prices {
		lines[i] = Line{ProductID: uuid.New(), Quantity: dec("1"), UnitPrice: dec(price)}
	}
	return lines
}

func sumDiscounts(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].DiscountAmount)
	}
	return total
}

func TestAllocatePercentageAcrossEqualLines(t *testing.T) {
	lines := allocLines("33.33", "33.33", "33.34")

	target := Allocate(lines, dec("15"), true)
	if !target.Equal(dec("15.00")) {
		t.Fatalf("expected target 15.00 got %s", target)
	}
	for i, want := range []string{"5.00", "5.00", "5.00"} {
		if !lines[i].DiscountAmount.Equal(dec(want)) {
			t.Fatalf("line %d: expected %s got %s", i, want, lines[i].DiscountAmount)
		}
	}
	if !sumDiscounts(lines).Equal(target) {
		t.Fatalf("allocation must sum to target, got %s", sumDiscounts(lines))
	}
}

func TestAllocateLastLineAbsorbsRemainder(t *testing.T) {
	lines := allocLines("10.00", "10.00", "10.00")

	target := Allocate(lines, dec("10.00"), false)
	if !target.Equal(dec("10.00")) {
		t.Fatalf("expected target 10.00 got %s", target)
	}
	// 10/3 rounds to 3.33 twice; the last line takes 3.34.
	if !lines[0].DiscountAmount.Equal(dec("3.33")) || !lines[1].DiscountAmount.Equal(dec("3.33")) {
		t.Fatalf("unexpected proportional shares %s, %s", lines[0].DiscountAmount, lines[1].DiscountAmount)
	}
	if !lines[2].DiscountAmount.Equal(dec("3.34")) {
		t.Fatalf("expected remainder 3.34 got %s", lines[2].DiscountAmount)
	}
}

func TestAllocateFixedCappedAtSubtotal(t *testing.T) {
	lines := allocLines("4.00", "6.00")

	target := Allocate(lines, dec("25.00"), false)
	if !target.Equal(dec("10.00")) {
		t.Fatalf("expected target capped to 10.00 got %s", target)
	}
	if !sumDiscounts(lines).Equal(dec("10.00")) {
		t.Fatalf("expected full absorption, got %s", sumDiscounts(lines))
	}
}

func TestAllocatePercentageAbove100Capped(t *testing.T) {
	lines := allocLines("20.00")

	target := Allocate(lines, dec("150"), true)
	if !target.Equal(dec("20.00")) {
		t.Fatalf("expected 100%% cap -> 20.00 got %s", target)
	}
}

func TestAllocateZeroSubtotalNoOp(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: dec("1"), UnitPrice: dec("0")}}

	target := Allocate(lines, dec("5.00"), false)
	if !target.IsZero() {
		t.Fatalf("expected no-op on zero subtotal, got %s", target)
	}
	if !lines[0].DiscountAmount.IsZero() {
		t.Fatal("expected untouched line")
	}
}

func TestAllocateTinyLastLineStaysWithinBounds(t *testing.T) {
	lines := allocLines("99.00", "0.01")

	target := Allocate(lines, dec("50.00"), false)
	if !target.Equal(dec("50.00")) {
		t.Fatalf("expected target 50.00 got %s", target)
	}
	if !sumDiscounts(lines).Equal(dec("50.00")) {
		t.Fatalf("expected reconciled sum 50.00, got %s", sumDiscounts(lines))
	}
	if lines[1].DiscountAmount.GreaterThan(dec("0.01")) {
		t.Fatalf("line discount exceeds its subtotal: %s", lines[1].DiscountAmount)
	}
}

func TestAllocateRemainderLawAcrossAwkwardSplits(t *testing.T) {
	cases := []struct {
		name   string
		prices []string
		value  string
		isPct  bool
	}{
		{"seven way percentage", []string{"11.11", "22.22", "33.33", "44.44", "55.55", "66.66", "77.77"}, "7", true},
		{"odd fixed", []string{"19.99", "4.01", "0.99"}, "13.37", false},
		{"single line", []string{"8.88"}, "33", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := allocLines(tc.prices...)
			target := Allocate(lines, dec(tc.value), tc.isPct)
			if !sumDiscounts(lines).Equal(target) {
				t.Fatalf("sum %s != target %s", sumDiscounts(lines), target)
			}
			for i := range lines {
				if lines[i].DiscountAmount.IsNegative() || lines[i].DiscountAmount.GreaterThan(lines[i].Subtotal()) {
					t.Fatalf("line %d discount %s out of bounds", i, lines[i].DiscountAmount)
				}
			}
		})
	}
}
