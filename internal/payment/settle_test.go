package payment

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestSettleCashWithChange(t *testing.T) {
	settlement, err := Settle(dec("50.00"), Tender{Type: enums.PaymentTypeCash, Cash: dec("100.00")}, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !settlement.CashCharged.Equal(dec("50.00")) {
		t.Fatalf("expected cash charged 50.00 got %s", settlement.CashCharged)
	}
	if !settlement.Change.Equal(dec("50.00")) {
		t.Fatalf("expected change 50.00 got %s", settlement.Change)
	}
	if !settlement.CardCharged.IsZero() {
		t.Fatalf("expected no card charge got %s", settlement.CardCharged)
	}
}

func TestSettleCashInsufficient(t *testing.T) {
	_, err := Settle(dec("50.00"), Tender{Type: enums.PaymentTypeCash, Cash: dec("49.99")}, true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
}

func TestSettleCardChargesExactTotal(t *testing.T) {
	settlement, err := Settle(dec("42.10"), Tender{Type: enums.PaymentTypeCard}, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !settlement.CardCharged.Equal(dec("42.10")) || !settlement.Change.IsZero() {
		t.Fatalf("unexpected settlement %+v", settlement)
	}
}

func TestSettleMixedSplitsRemainderToCard(t *testing.T) {
	settlement, err := Settle(dec("100.00"), Tender{Type: enums.PaymentTypeMixed, Cash: dec("20.00")}, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !settlement.CashCharged.Equal(dec("20.00")) {
		t.Fatalf("expected cash 20.00 got %s", settlement.CashCharged)
	}
	if !settlement.CardCharged.Equal(dec("80.00")) {
		t.Fatalf("expected card 80.00 got %s", settlement.CardCharged)
	}
	if settlement.Type != enums.PaymentTypeMixed {
		t.Fatalf("expected mixed type got %s", settlement.Type)
	}
}

func TestSettleMixedDegradesToCashOnSurplus(t *testing.T) {
	settlement, err := Settle(dec("30.00"), Tender{Type: enums.PaymentTypeMixed, Cash: dec("40.00")}, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settlement.Type != enums.PaymentTypeCash {
		t.Fatalf("expected degrade to cash got %s", settlement.Type)
	}
	if !settlement.Change.Equal(dec("10.00")) || !settlement.CardCharged.IsZero() {
		t.Fatalf("unexpected settlement %+v", settlement)
	}
}

func TestSettleFreeCheckNeedsConfirmation(t *testing.T) {
	_, err := Settle(dec("0"), Tender{Type: enums.PaymentTypeCash}, true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected confirmation requirement, got %v", err)
	}

	settlement, err := Settle(dec("0"), Tender{Type: enums.PaymentTypeCash, ConfirmFree: true}, true)
	if err != nil {
		t.Fatalf("confirmed free settle: %v", err)
	}
	if settlement.Type != enums.PaymentTypeCash || !settlement.CashCharged.IsZero() || !settlement.Change.IsZero() {
		t.Fatalf("unexpected settlement %+v", settlement)
	}
}

func TestSettlePureGiftCheckAutoResolves(t *testing.T) {
	settlement, err := Settle(dec("0"), Tender{Type: enums.PaymentTypeCard}, false)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settlement.Type != enums.PaymentTypeCash || !settlement.CashCharged.IsZero() {
		t.Fatalf("unexpected settlement %+v", settlement)
	}
}

func TestSettleRejectsNegativeTender(t *testing.T) {
	_, err := Settle(dec("10.00"), Tender{Type: enums.PaymentTypeCash, Cash: dec("-5.00")}, true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
}

func TestSettleRejectsUnknownType(t *testing.T) {
	_, err := Settle(dec("10.00"), Tender{Type: enums.PaymentType("voucher"), Cash: dec("10.00")}, true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
}
