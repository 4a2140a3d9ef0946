package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/products"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/razorpay"
)

type fakeGateway struct {
	lastAmount decimal.Decimal
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.GatewayOrder, error) {
	f.lastAmount = amount
	return &razorpay.GatewayOrder{
		ID:          "order_fake",
		AmountPaise: amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    "INR",
		Receipt:     receipt,
		Status:      "created",
	}, nil
}

func (f *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

type fakeProductRepo struct {
	items map[uuid.UUID]*models.Product
}

func (f *fakeProductRepo) WithTx(tx *gorm.DB) products.Repository {
	return f
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	f.items[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter products.ListFilter) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func seedProduct(repo *fakeProductRepo, price string, active bool) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		FarmerID: uuid.New(),
		Name:     "Test Produce",
		Price:    decimal.RequireFromString(price),
		IsActive: active,
		Stock:    100,
	}
	repo.items[product.ID] = product
	return product
}

func TestCreateIntentPricesFromCatalog(t *testing.T) {
	gateway := &fakeGateway{}
	repo := &fakeProductRepo{items: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(gateway, repo)
	require.NoError(t, err)

	a := seedProduct(repo, "40.50", true)
	b := seedProduct(repo, "100.00", true)

	intent, err := svc.CreateIntent(context.Background(), uuid.New(), []IntentItem{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.True(t, gateway.lastAmount.Equal(decimal.RequireFromString("181.00")))
	assert.Equal(t, int64(18100), intent.AmountPaise)
	assert.Equal(t, "order_fake", intent.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", intent.KeyID)
	assert.Equal(t, "INR", intent.Currency)
}

func TestCreateIntentRejectsInactiveProduct(t *testing.T) {
	gateway := &fakeGateway{}
	repo := &fakeProductRepo{items: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(gateway, repo)
	require.NoError(t, err)

	inactive := seedProduct(repo, "10.00", false)

	_, err = svc.CreateIntent(context.Background(), uuid.New(), []IntentItem{
		{ProductID: inactive.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateIntentRejectsEmptyCartAndBadQuantity(t *testing.T) {
	gateway := &fakeGateway{}
	repo := &fakeProductRepo{items: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(gateway, repo)
	require.NoError(t, err)

	_, err = svc.CreateIntent(context.Background(), uuid.New(), nil)
	require.Error(t, err)

	product := seedProduct(repo, "10.00", true)
	_, err = svc.CreateIntent(context.Background(), uuid.New(), []IntentItem{
		{ProductID: product.ID, Quantity: 0},
	})
	require.Error(t, err)
}

func TestCreateIntentUnknownProduct(t *testing.T) {
	gateway := &fakeGateway{}
	repo := &fakeProductRepo{items: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(gateway, repo)
	require.NoError(t, err)

	_, err = svc.CreateIntent(context.Background(), uuid.New(), []IntentItem{
		{ProductID: uuid.New(), Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
