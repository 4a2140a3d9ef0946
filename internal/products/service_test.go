package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement/unitofwork"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

type txRunner struct {
	db *gorm.DB
}

func (r *txRunner) DB() *gorm.DB {
	return r.db
}

func (r *txRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  farmer_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL,
  unit TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  is_organic INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  harvest_date DATETIME,
  expiry_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	inventoryLogs := `
CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  order_id TEXT,
  actor_user_id TEXT,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  previous_stock INTEGER NOT NULL,
  new_stock INTEGER NOT NULL,
  reason TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(inventoryLogs).Error)
	return db
}

func newProductService(t *testing.T, db *gorm.DB) (Service, inventory.Service) {
	t.Helper()

	ledger, err := inventory.NewLedger(db)
	require.NoError(t, err)
	exec, err := unitofwork.NewTxExecutor(&txRunner{db: db})
	require.NoError(t, err)
	inv, err := inventory.NewService(ledger, inventory.NewLogRepository(db), exec)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), inv)
	require.NoError(t, err)
	return svc, inv
}

func TestCreateSeedsStockThroughLedger(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, inv := newProductService(t, db)

	farmerID := uuid.New()
	product, err := svc.Create(context.Background(), CreateInput{
		FarmerID:     farmerID,
		Name:         "Desi Tomatoes",
		Category:     "vegetables",
		Price:        decimal.RequireFromString("40.00"),
		Unit:         enums.ProductUnitKg,
		InitialStock: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, product.Stock)

	logs, err := inv.ListLogs(context.Background(), inventory.LogFilter{ProductID: product.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, enums.InventoryLogStockAdded, logs[0].Type)
	assert.Equal(t, 0, logs[0].PreviousStock)
	assert.Equal(t, 25, logs[0].NewStock)
}

func TestCreateValidatesInput(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, _ := newProductService(t, db)

	_, err := svc.Create(context.Background(), CreateInput{
		FarmerID: uuid.New(),
		Name:     "Free Spinach",
		Category: "greens",
		Price:    decimal.Zero,
		Unit:     enums.ProductUnitBundles,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreateInput{
		FarmerID:     uuid.New(),
		Name:         "Carrots",
		Category:     "vegetables",
		Price:        decimal.RequireFromString("30.00"),
		Unit:         enums.ProductUnitKg,
		InitialStock: -1,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateNeverTouchesStock(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, _ := newProductService(t, db)

	farmerID := uuid.New()
	product, err := svc.Create(context.Background(), CreateInput{
		FarmerID:     farmerID,
		Name:         "Basmati Rice",
		Category:     "grains",
		Price:        decimal.RequireFromString("90.00"),
		Unit:         enums.ProductUnitKg,
		InitialStock: 100,
	})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("95.00")
	updated, err := svc.Update(context.Background(), farmerID, product.ID, UpdateInput{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, 100, updated.Stock)
}

func TestUpdateRejectsForeignFarmer(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, _ := newProductService(t, db)

	product, err := svc.Create(context.Background(), CreateInput{
		FarmerID: uuid.New(),
		Name:     "Okra",
		Category: "vegetables",
		Price:    decimal.RequireFromString("50.00"),
		Unit:     enums.ProductUnitKg,
	})
	require.NoError(t, err)

	name := "Ladyfinger"
	_, err = svc.Update(context.Background(), uuid.New(), product.ID, UpdateInput{Name: &name})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, _ := newProductService(t, db)

	farmerID := uuid.New()
	_, err := svc.Create(context.Background(), CreateInput{
		FarmerID:     farmerID,
		Name:         "Organic Palak",
		Category:     "greens",
		Price:        decimal.RequireFromString("35.00"),
		Unit:         enums.ProductUnitBundles,
		InitialStock: 10,
		IsOrganic:    true,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		FarmerID: farmerID,
		Name:     "Regular Palak",
		Category: "greens",
		Price:    decimal.RequireFromString("20.00"),
		Unit:     enums.ProductUnitBundles,
	})
	require.NoError(t, err)

	organic, err := svc.List(context.Background(), ListFilter{OrganicOnly: true})
	require.NoError(t, err)
	require.Len(t, organic, 1)
	assert.Equal(t, "Organic Palak", organic[0].Name)

	inStock, err := svc.List(context.Background(), ListFilter{InStockOnly: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "Organic Palak", inStock[0].Name)
}

func TestDeactivateHidesListing(t *testing.T) {
	db := setupProductsTestDB(t)
	svc, _ := newProductService(t, db)

	farmerID := uuid.New()
	product, err := svc.Create(context.Background(), CreateInput{
		FarmerID: farmerID,
		Name:     "Brinjal",
		Category: "vegetables",
		Price:    decimal.RequireFromString("45.00"),
		Unit:     enums.ProductUnitKg,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), farmerID, product.ID))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
}
