package sale

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/internal/payment"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCheckRepo struct {
	created   *models.Check
	createErr error
}

func (s *stubCheckRepo) WithTx(tx *gorm.DB) CheckRepository { return s }

func (s *stubCheckRepo) Create(ctx context.Context, check *models.Check) (*models.Check, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = check
	return check, nil
}

func (s *stubCheckRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
}

func (s *stubCheckRepo) FindBySequenceAndShift(ctx context.Context, sequence int64, shiftID uuid.UUID) (*models.Check, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check not found")
}

func (s *stubCheckRepo) ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error) {
	return nil, nil
}

func (s *stubCheckRepo) ReturnedQuantities(ctx context.Context, originalCheckID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return map[uuid.UUID]decimal.Decimal{}, nil
}

func (s *stubCheckRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

type stubSequencer struct {
	next int64
	err  error
}

func (s *stubSequencer) NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.next, nil
}

type stubStockAdjuster struct {
	deltas map[uuid.UUID]decimal.Decimal
	err    error
}

func (s *stubStockAdjuster) AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	if s.err != nil {
		return s.err
	}
	if s.deltas == nil {
		s.deltas = map[uuid.UUID]decimal.Decimal{}
	}
	s.deltas[productID] = s.deltas[productID].Add(delta)
	return nil
}

func newTestService(t *testing.T, repo *stubCheckRepo, seq *stubSequencer, stock *stubStockAdjuster) Service {
	t.Helper()

	svc, err := NewService(stubTxRunner{}, repo, seq, stock)
	require.NoError(t, err)
	return svc
}

func saleLine(name string, qty, price, disc string) discount.Line {
	return discount.Line{
		ProductID:      uuid.New(),
		Name:           name,
		Quantity:       decimal.RequireFromString(qty),
		UnitPrice:      decimal.RequireFromString(price),
		DiscountAmount: decimal.RequireFromString(disc),
	}
}

func TestCommitPersistsCheckAndDecrementsStock(t *testing.T) {
	t.Parallel()

	repo := &stubCheckRepo{}
	stock := &stubStockAdjuster{}
	svc := newTestService(t, repo, &stubSequencer{next: 7}, stock)

	water := saleLine("Water", "2", "1.50", "0")
	bread := saleLine("Bread", "1", "3.00", "0.30")

	check, err := svc.Commit(context.Background(), CommitInput{
		ShiftID:   uuid.New(),
		CashierID: uuid.New(),
		Lines:     []discount.Line{water, bread},
		Tender: payment.Tender{
			Type: enums.PaymentTypeCash,
			Cash: decimal.RequireFromString("10.00"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, int64(7), check.SequenceNumber)
	assert.Equal(t, enums.PaymentTypeCash, check.PaymentType)
	assert.True(t, check.TotalAmount.Equal(decimal.RequireFromString("5.70")), "total %s", check.TotalAmount)
	assert.True(t, check.DiscountAmount.Equal(decimal.RequireFromString("0.30")))
	assert.True(t, check.CashPaid.Equal(decimal.RequireFromString("5.70")))
	assert.True(t, check.ChangeGiven.Equal(decimal.RequireFromString("4.30")))
	require.Len(t, check.Lines, 2)
	assert.Equal(t, "Water", check.Lines[0].Name)

	assert.True(t, stock.deltas[water.ProductID].Equal(decimal.NewFromInt(-2)))
	assert.True(t, stock.deltas[bread.ProductID].Equal(decimal.NewFromInt(-1)))
}

func TestCommitMixedTenderRecordsSplit(t *testing.T) {
	t.Parallel()

	repo := &stubCheckRepo{}
	svc := newTestService(t, repo, &stubSequencer{next: 1}, &stubStockAdjuster{})

	check, err := svc.Commit(context.Background(), CommitInput{
		ShiftID:   uuid.New(),
		CashierID: uuid.New(),
		Lines:     []discount.Line{saleLine("Cheese", "1", "100.00", "0")},
		Tender: payment.Tender{
			Type: enums.PaymentTypeMixed,
			Cash: decimal.RequireFromString("20.00"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.PaymentTypeMixed, check.PaymentType)
	assert.True(t, check.CashPaid.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, check.CardPaid.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, check.ChangeGiven.IsZero())
}

func TestCommitValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCheckRepo{}, &stubSequencer{next: 1}, &stubStockAdjuster{})

	cases := []struct {
		name  string
		input CommitInput
	}{
		{
			name: "missing shift",
			input: CommitInput{
				CashierID: uuid.New(),
				Lines:     []discount.Line{saleLine("Water", "1", "1.50", "0")},
			},
		},
		{
			name: "missing cashier",
			input: CommitInput{
				ShiftID: uuid.New(),
				Lines:   []discount.Line{saleLine("Water", "1", "1.50", "0")},
			},
		},
		{
			name: "empty lines",
			input: CommitInput{
				ShiftID:   uuid.New(),
				CashierID: uuid.New(),
			},
		},
		{
			name: "non-positive quantity",
			input: CommitInput{
				ShiftID:   uuid.New(),
				CashierID: uuid.New(),
				Lines:     []discount.Line{saleLine("Water", "0", "1.50", "0")},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Commit(context.Background(), tc.input)
			require.Error(t, err)

			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestCommitInsufficientCashSkipsPersistence(t *testing.T) {
	t.Parallel()

	repo := &stubCheckRepo{}
	svc := newTestService(t, repo, &stubSequencer{next: 1}, &stubStockAdjuster{})

	_, err := svc.Commit(context.Background(), CommitInput{
		ShiftID:   uuid.New(),
		CashierID: uuid.New(),
		Lines:     []discount.Line{saleLine("Water", "1", "5.00", "0")},
		Tender: payment.Tender{
			Type: enums.PaymentTypeCash,
			Cash: decimal.RequireFromString("3.00"),
		},
	})
	require.Error(t, err)
	assert.Nil(t, repo.created)
}

func TestCommitFailsWhenStockRunsOut(t *testing.T) {
	t.Parallel()

	stock := &stubStockAdjuster{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")}
	svc := newTestService(t, &stubCheckRepo{}, &stubSequencer{next: 1}, stock)

	_, err := svc.Commit(context.Background(), CommitInput{
		ShiftID:   uuid.New(),
		CashierID: uuid.New(),
		Lines:     []discount.Line{saleLine("Water", "1", "1.50", "0")},
		Tender: payment.Tender{
			Type: enums.PaymentTypeCash,
			Cash: decimal.RequireFromString("2.00"),
		},
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}
