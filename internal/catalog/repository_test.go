package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:catalog_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  barcode TEXT UNIQUE,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.AutoMigrate(&models.InventoryItem{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, barcode *string, name, price string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Code:     code,
		Barcode:  barcode,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func ptr(s string) *string { return &s }

func TestFindByCodeOrBarcode(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	water := seedProduct(t, db, "WTR-01", ptr("4601234567890"), "Water", "1.50", true)
	seedProduct(t, db, "BRD-01", nil, "Bread", "3.00", true)

	byCode, err := repo.FindByCodeOrBarcode(ctx, "WTR-01")
	require.NoError(t, err)
	assert.Equal(t, water.ID, byCode.ID)

	byBarcode, err := repo.FindByCodeOrBarcode(ctx, "4601234567890")
	require.NoError(t, err)
	assert.Equal(t, water.ID, byBarcode.ID)

	_, err = repo.FindByCodeOrBarcode(ctx, "missing")
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFindByCodeOrBarcodeCodeWinsOverBarcode(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// One product's code collides with another product's barcode.
	byCode := seedProduct(t, db, "1000", nil, "Code Match", "2.00", true)
	seedProduct(t, db, "SNK-01", ptr("1000"), "Barcode Match", "4.00", true)

	found, err := repo.FindByCodeOrBarcode(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, byCode.ID, found.ID)
}

func TestFindByCodeOrBarcodeSkipsInactive(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	seedProduct(t, db, "OLD-01", nil, "Retired", "9.99", false)

	_, err := repo.FindByCodeOrBarcode(context.Background(), "OLD-01")
	require.Error(t, err)
}

func TestFindByCodeOrBarcodeRequiresIdentifier(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByCodeOrBarcode(context.Background(), "")
	require.Error(t, err)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProductsByID(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	water := seedProduct(t, db, "WTR-01", nil, "Water", "1.50", true)
	bread := seedProduct(t, db, "BRD-01", nil, "Bread", "3.00", true)

	found, err := repo.ProductsByID(ctx, []uuid.UUID{water.ID, bread.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Water", found[water.ID].Name)

	empty, err := repo.ProductsByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListReturnsActiveWithInventory(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	water := seedProduct(t, db, "WTR-01", nil, "Water", "1.50", true)
	seedProduct(t, db, "OLD-01", nil, "Retired", "9.99", false)
	require.NoError(t, db.Create(&models.InventoryItem{
		ProductID: water.ID,
		Quantity:  decimal.NewFromInt(12),
	}).Error)

	listed, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Inventory)
	assert.True(t, listed[0].Inventory.Quantity.Equal(decimal.NewFromInt(12)))
}
