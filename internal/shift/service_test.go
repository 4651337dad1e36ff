package shift

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubShiftRepo struct {
	open       *models.Shift
	byID       map[uuid.UUID]*models.Shift
	created    *models.Shift
	saved      *models.Shift
	nextNumber int64
}

func (s *stubShiftRepo) WithTx(tx *gorm.DB) ShiftRepository { return s }

func (s *stubShiftRepo) CurrentOpen(ctx context.Context) (*models.Shift, error) {
	return s.open, nil
}

func (s *stubShiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	if shift, ok := s.byID[id]; ok {
		return shift, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
}

func (s *stubShiftRepo) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	shift.ID = uuid.New()
	s.created = shift
	return shift, nil
}

func (s *stubShiftRepo) Save(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	s.saved = shift
	return shift, nil
}

func (s *stubShiftRepo) NextNumber(ctx context.Context) (int64, error) {
	return s.nextNumber, nil
}

func (s *stubShiftRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Shift, error) {
	return s.FindByID(ctx, id)
}

func (s *stubShiftRepo) NextCheckSequence(ctx context.Context, tx *gorm.DB, shiftID uuid.UUID) (int64, error) {
	return 1, nil
}

type stubMovementRepo struct {
	recorded  []*models.CashMovement
	movements []models.CashMovement
}

func (s *stubMovementRepo) WithTx(tx *gorm.DB) CashMovementRepository { return s }

func (s *stubMovementRepo) Record(ctx context.Context, movement *models.CashMovement) (*models.CashMovement, error) {
	s.recorded = append(s.recorded, movement)
	return movement, nil
}

func (s *stubMovementRepo) ForShift(ctx context.Context, shiftID uuid.UUID) ([]models.CashMovement, error) {
	return s.movements, nil
}

type stubCheckSource struct {
	checks []models.Check
}

func (s *stubCheckSource) ChecksForShift(ctx context.Context, shiftID uuid.UUID) ([]models.Check, error) {
	return s.checks, nil
}

func newShiftService(t *testing.T, shifts *stubShiftRepo, movements *stubMovementRepo, checks *stubCheckSource) Service {
	t.Helper()

	if movements == nil {
		movements = &stubMovementRepo{}
	}
	if checks == nil {
		checks = &stubCheckSource{}
	}
	svc, err := NewService(stubTxRunner{}, shifts, movements, checks)
	require.NoError(t, err)
	return svc
}

func openShift(startCash string) *models.Shift {
	return &models.Shift{
		ID:               uuid.New(),
		Number:           5,
		OpenedAt:         time.Now().UTC().Add(-4 * time.Hour),
		OpeningCashierID: uuid.New(),
		StartCash:        mustMoney(startCash),
	}
}

func TestOpenCreatesShift(t *testing.T) {
	t.Parallel()

	repo := &stubShiftRepo{nextNumber: 8}
	svc := newShiftService(t, repo, nil, nil)

	shift, err := svc.Open(context.Background(), uuid.New(), mustMoney("150.555"))
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, int64(8), shift.Number)
	assert.True(t, shift.StartCash.Equal(mustMoney("150.56")), "start cash %s", shift.StartCash)
	assert.True(t, shift.IsOpen())
}

func TestOpenRejectsWhenShiftAlreadyOpen(t *testing.T) {
	t.Parallel()

	repo := &stubShiftRepo{open: openShift("100.00")}
	svc := newShiftService(t, repo, nil, nil)

	_, err := svc.Open(context.Background(), uuid.New(), mustMoney("50.00"))
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	assert.Nil(t, repo.created)
}

func TestOpenValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newShiftService(t, &stubShiftRepo{nextNumber: 1}, nil, nil)

	_, err := svc.Open(context.Background(), uuid.Nil, mustMoney("10.00"))
	require.Error(t, err)

	_, err = svc.Open(context.Background(), uuid.New(), mustMoney("-1.00"))
	require.Error(t, err)
}

func TestCloseFreezesFigures(t *testing.T) {
	t.Parallel()

	shift := openShift("100.00")
	repo := &stubShiftRepo{byID: map[uuid.UUID]*models.Shift{shift.ID: shift}}
	checks := &stubCheckSource{checks: []models.Check{
		{PaymentType: enums.PaymentTypeCash, TotalAmount: mustMoney("80.00"), CashPaid: mustMoney("80.00")},
	}}
	movements := &stubMovementRepo{movements: []models.CashMovement{
		{Kind: enums.CashMovementKindCashOut, Amount: mustMoney("30.00")},
	}}
	svc := newShiftService(t, repo, movements, checks)

	closer := uuid.New()
	report, err := svc.Close(context.Background(), shift.ID, closer, mustMoney("148.00"))
	require.NoError(t, err)
	require.NotNil(t, repo.saved)

	// theoretical: 100 + 80 - 30 = 150; counted 148 leaves -2.00
	assert.True(t, report.TheoreticalCash.Equal(mustMoney("150.00")))
	require.NotNil(t, report.ActualCash)
	assert.True(t, report.ActualCash.Equal(mustMoney("148.00")))
	require.NotNil(t, report.Difference)
	assert.True(t, report.Difference.Equal(mustMoney("-2.00")), "difference %s", report.Difference)

	saved := repo.saved
	assert.NotNil(t, saved.ClosedAt)
	assert.Equal(t, closer, *saved.ClosingCashierID)
	assert.True(t, saved.EndCashTheoretic.Equal(mustMoney("150.00")))
	assert.True(t, saved.EndCashActual.Equal(mustMoney("148.00")))
	assert.True(t, saved.Difference.Equal(mustMoney("-2.00")))
	assert.True(t, saved.TotalSales.Equal(mustMoney("80.00")))
}

func TestCloseRejectsClosedShift(t *testing.T) {
	t.Parallel()

	shift := openShift("100.00")
	closedAt := time.Now().UTC()
	shift.ClosedAt = &closedAt
	repo := &stubShiftRepo{byID: map[uuid.UUID]*models.Shift{shift.ID: shift}}
	svc := newShiftService(t, repo, nil, nil)

	_, err := svc.Close(context.Background(), shift.ID, uuid.New(), mustMoney("100.00"))
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	assert.Nil(t, repo.saved)
}

func TestXReportLeavesShiftUntouched(t *testing.T) {
	t.Parallel()

	shift := openShift("200.00")
	repo := &stubShiftRepo{byID: map[uuid.UUID]*models.Shift{shift.ID: shift}}
	checks := &stubCheckSource{checks: []models.Check{
		{PaymentType: enums.PaymentTypeCard, TotalAmount: mustMoney("90.00"), CardPaid: mustMoney("90.00")},
	}}
	svc := newShiftService(t, repo, nil, checks)

	report, err := svc.XReport(context.Background(), shift.ID)
	require.NoError(t, err)

	assert.True(t, report.TheoreticalCash.Equal(mustMoney("200.00")))
	assert.True(t, report.CardSales.Equal(mustMoney("90.00")))
	assert.Nil(t, report.ActualCash)
	assert.Nil(t, repo.saved)
}

func TestXReportClosedShiftShowsStoredActuals(t *testing.T) {
	t.Parallel()

	shift := openShift("100.00")
	closedAt := time.Now().UTC()
	actual := mustMoney("97.00")
	difference := mustMoney("-3.00")
	shift.ClosedAt = &closedAt
	shift.EndCashActual = &actual
	shift.Difference = &difference
	repo := &stubShiftRepo{byID: map[uuid.UUID]*models.Shift{shift.ID: shift}}
	svc := newShiftService(t, repo, nil, nil)

	report, err := svc.XReport(context.Background(), shift.ID)
	require.NoError(t, err)

	require.NotNil(t, report.ActualCash)
	assert.True(t, report.ActualCash.Equal(actual))
	require.NotNil(t, report.Difference)
	assert.True(t, report.Difference.Equal(difference))
}

func TestCurrentReturnsNotFoundWithoutOpenShift(t *testing.T) {
	t.Parallel()

	svc := newShiftService(t, &stubShiftRepo{}, nil, nil)

	_, err := svc.Current(context.Background())
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRecordCashMovementRequiresOpenShift(t *testing.T) {
	t.Parallel()

	movements := &stubMovementRepo{}
	svc := newShiftService(t, &stubShiftRepo{}, movements, nil)

	_, err := svc.RecordCashMovement(context.Background(), CashMovementInput{
		CashierID: uuid.New(),
		Kind:      enums.CashMovementKindCashIn,
		Amount:    mustMoney("25.00"),
		Reason:    "float top-up",
	})
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	assert.Empty(t, movements.recorded)
}

func TestRecordCashMovementAppendsToOpenShift(t *testing.T) {
	t.Parallel()

	shift := openShift("100.00")
	movements := &stubMovementRepo{}
	svc := newShiftService(t, &stubShiftRepo{open: shift}, movements, nil)

	recorded, err := svc.RecordCashMovement(context.Background(), CashMovementInput{
		CashierID: uuid.New(),
		Kind:      enums.CashMovementKindCashOut,
		Amount:    mustMoney("12.345"),
		Reason:    "supplier cod",
	})
	require.NoError(t, err)
	require.Len(t, movements.recorded, 1)

	assert.Equal(t, shift.ID, recorded.ShiftID)
	assert.True(t, recorded.Amount.Equal(mustMoney("12.35")), "amount %s", recorded.Amount)
}

func TestRecordCashMovementValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newShiftService(t, &stubShiftRepo{open: openShift("100.00")}, nil, nil)

	cases := []struct {
		name  string
		input CashMovementInput
	}{
		{"missing cashier", CashMovementInput{Kind: enums.CashMovementKindCashIn, Amount: mustMoney("5.00"), Reason: "x"}},
		{"bad kind", CashMovementInput{CashierID: uuid.New(), Kind: enums.CashMovementKind("park"), Amount: mustMoney("5.00"), Reason: "x"}},
		{"non-positive amount", CashMovementInput{CashierID: uuid.New(), Kind: enums.CashMovementKindCashIn, Amount: mustMoney("0"), Reason: "x"}},
		{"missing reason", CashMovementInput{CashierID: uuid.New(), Kind: enums.CashMovementKindCashIn, Amount: mustMoney("5.00")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordCashMovement(context.Background(), tc.input)
			require.Error(t, err)
		})
	}
}
