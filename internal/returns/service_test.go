package returns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/internal/sale"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCheckRepo struct {
	original *models.Check
	returned map[uuid.UUID]decimal.Decimal
	findErr  error
	created  *models.Check
}

func (s *stubCheckRepo) WithTx(tx *gorm.DB) sale.CheckRepository { return s }

func (s *stubCheckRepo) Create(ctx context.Context, check *models.Check) (*models.Check, error) {
	s.created = check
	return check, nil
}

func (s *stubCheckRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.original == nil || s.original.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
	}
	return s.original, nil
}

func (s *stubCheckRepo) FindBySequenceAndShift(ctx context.Context, sequence int64, shiftID uuid.UUID) (*models.Check, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
}

func (s *stubCheckRepo) ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error) {
	return nil, nil
}

func (s *stubCheckRepo) ReturnedQuantities(ctx context.Context, originalCheckID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if s.returned == nil {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	return s.returned, nil
}

func (s *stubCheckRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if s.findErr != nil {
		return s.findErr
	}
	if s.original == nil || s.original.ID != id {
		return pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
	}
	return nil
}

type stubSequencer struct {
	next int64
}

func (s *stubSequencer) NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error) {
	return s.next, nil
}

type stubStockAdjuster struct {
	deltas map[uuid.UUID]decimal.Decimal
}

func (s *stubStockAdjuster) AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	if s.deltas == nil {
		s.deltas = map[uuid.UUID]decimal.Decimal{}
	}
	s.deltas[productID] = s.deltas[productID].Add(delta)
	return nil
}

func mixedOriginal() *models.Check {
	// A 100.00 sale paid 20.00 cash and 80.00 card.
	return &models.Check{
		ID:             uuid.New(),
		ShiftID:        uuid.New(),
		SequenceNumber: 4,
		CashierID:      uuid.New(),
		PaymentType:    enums.PaymentTypeMixed,
		TotalAmount:    decimal.RequireFromString("100.00"),
		CashPaid:       decimal.RequireFromString("20.00"),
		CardPaid:       decimal.RequireFromString("80.00"),
		Lines: []models.CheckLine{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Name:      "Blender",
				Quantity:  decimal.NewFromInt(2),
				UnitPrice: decimal.RequireFromString("50.00"),
			},
		},
	}
}

func newTestService(t *testing.T, repo *stubCheckRepo, stock *stubStockAdjuster) Service {
	t.Helper()

	svc, err := NewService(stubTxRunner{}, repo, &stubSequencer{next: 11}, stock)
	require.NoError(t, err)
	return svc
}

func TestResolveFullMixedReturnRefundsBothChannels(t *testing.T) {
	t.Parallel()

	original := mixedOriginal()
	repo := &stubCheckRepo{original: original}
	stock := &stubStockAdjuster{}
	svc := newTestService(t, repo, stock)

	check, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: original.Lines[0].ID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.True(t, check.IsReturn)
	assert.Equal(t, original.ID, *check.OriginalCheckID)
	assert.Equal(t, int64(11), check.SequenceNumber)
	assert.Equal(t, enums.PaymentTypeMixed, check.PaymentType)
	assert.True(t, check.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, check.CardRefunded.Equal(decimal.RequireFromString("80.00")), "card %s", check.CardRefunded)
	assert.True(t, check.CashRefunded.Equal(decimal.RequireFromString("20.00")), "cash %s", check.CashRefunded)
	assert.True(t, check.CashPaid.IsZero())
	assert.True(t, check.CardPaid.IsZero())
	assert.True(t, check.ChangeGiven.IsZero())

	productID := original.Lines[0].ProductID
	assert.True(t, stock.deltas[productID].Equal(decimal.NewFromInt(2)))

	require.Len(t, check.Lines, 1)
	assert.Equal(t, original.Lines[0].ID, *check.Lines[0].OriginalLineID)
}

func TestResolvePartialMixedReturnGoesToCardFirst(t *testing.T) {
	t.Parallel()

	original := mixedOriginal()
	repo := &stubCheckRepo{original: original}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	check, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: original.Lines[0].ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	// 50.00 back, all within what the card paid.
	assert.Equal(t, enums.PaymentTypeCard, check.PaymentType)
	assert.True(t, check.CardRefunded.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, check.CashRefunded.IsZero())
}

func TestResolveScalesDiscountProportionally(t *testing.T) {
	t.Parallel()

	original := &models.Check{
		ID:          uuid.New(),
		ShiftID:     uuid.New(),
		CashierID:   uuid.New(),
		PaymentType: enums.PaymentTypeCash,
		TotalAmount: decimal.RequireFromString("270.00"),
		CashPaid:    decimal.RequireFromString("270.00"),
		Lines: []models.CheckLine{
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				Name:           "Speaker",
				Quantity:       decimal.NewFromInt(3),
				UnitPrice:      decimal.RequireFromString("100.00"),
				DiscountAmount: decimal.RequireFromString("30.00"),
			},
		},
	}
	repo := &stubCheckRepo{original: original}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	check, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: original.Lines[0].ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	// One of three units carries a third of the 30.00 discount.
	assert.True(t, check.DiscountAmount.Equal(decimal.RequireFromString("10.00")), "discount %s", check.DiscountAmount)
	assert.True(t, check.TotalAmount.Equal(decimal.RequireFromString("90.00")), "total %s", check.TotalAmount)
	assert.True(t, check.CashRefunded.Equal(decimal.RequireFromString("90.00")))
}

func TestResolveRejectsOverReturnAgainstLedger(t *testing.T) {
	t.Parallel()

	original := mixedOriginal()
	repo := &stubCheckRepo{
		original: original,
		returned: map[uuid.UUID]decimal.Decimal{
			original.Lines[0].ID: decimal.NewFromInt(1),
		},
	}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	_, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: original.Lines[0].ID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	assert.Nil(t, repo.created)
}

func TestResolveFailsClosedWhenOriginalMissing(t *testing.T) {
	t.Parallel()

	repo := &stubCheckRepo{}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	_, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: uuid.New(),
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
	assert.Nil(t, repo.created)
}

func TestResolveRejectsReturnOfReturn(t *testing.T) {
	t.Parallel()

	original := mixedOriginal()
	original.IsReturn = true
	repo := &stubCheckRepo{original: original}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	_, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: original.Lines[0].ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveRejectsLineOutsideOriginal(t *testing.T) {
	t.Parallel()

	original := mixedOriginal()
	repo := &stubCheckRepo{original: original}
	svc := newTestService(t, repo, &stubStockAdjuster{})

	_, err := svc.Resolve(context.Background(), ReturnInput{
		OriginalCheckID: original.ID,
		ShiftID:         uuid.New(),
		CashierID:       uuid.New(),
		Items: []ReturnItem{
			{OriginalLineID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRefundSplit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		original enums.PaymentType
		total    string
		cardPaid string
		wantCash string
		wantCard string
	}{
		{"cash sale refunds cash", enums.PaymentTypeCash, "45.00", "0", "45.00", "0"},
		{"card sale refunds card", enums.PaymentTypeCard, "45.00", "45.00", "0", "45.00"},
		{"mixed within card portion", enums.PaymentTypeMixed, "30.00", "80.00", "0", "30.00"},
		{"mixed exceeding card portion", enums.PaymentTypeMixed, "100.00", "80.00", "20.00", "80.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cash, card := RefundSplit(tc.original, decimal.RequireFromString(tc.total), decimal.RequireFromString(tc.cardPaid))
			assert.True(t, cash.Equal(decimal.RequireFromString(tc.wantCash)), "cash %s", cash)
			assert.True(t, card.Equal(decimal.RequireFromString(tc.wantCard)), "card %s", card)
		})
	}
}
