package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.GatewayOrderID != nil && *order.GatewayOrderID == gatewayOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if filter.UserID != uuid.Nil && order.UserID != filter.UserID {
			continue
		}
		if filter.FarmerID != uuid.Nil && order.FarmerID != filter.FarmerID {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func seedOrder(repo *fakeOrderRepo, method enums.PaymentMethod, payment enums.PaymentStatus, delivery enums.DeliveryStatus) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		FarmerID:       uuid.New(),
		TotalPrice:     decimal.RequireFromString("240.00"),
		PaymentMethod:  method,
		PaymentStatus:  payment,
		DeliveryStatus: delivery,
	}
	_ = repo.Create(context.Background(), order)
	return order
}

func TestUpdateDeliveryStatusForwardOnly(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)
	farmer := Actor{UserID: order.FarmerID, Role: enums.UserRoleFarmer}

	updated, err := svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusShipped, updated.DeliveryStatus)

	// skipping back to pending is not allowed
	_, err = svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusPending)
	require.Error(t, err)

	updated, err = svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusDelivered, updated.DeliveryStatus)
	assert.NotNil(t, updated.DeliveredAt)

	_, err = svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusShipped)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestUpdateDeliveryStatusCompletesCODOnDelivery(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusShipped)
	farmer := Actor{UserID: order.FarmerID, Role: enums.UserRoleFarmer}

	updated, err := svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCompleted, updated.PaymentStatus)
}

func TestUpdateDeliveryStatusRejectsForeignFarmer(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)
	stranger := Actor{UserID: uuid.New(), Role: enums.UserRoleFarmer}

	_, err = svc.UpdateDeliveryStatus(context.Background(), stranger, order.ID, enums.DeliveryStatusShipped)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestUpdateDeliveryStatusRejectsCancelShortcut(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)
	farmer := Actor{UserID: order.FarmerID, Role: enums.UserRoleFarmer}

	_, err = svc.UpdateDeliveryStatus(context.Background(), farmer, order.ID, enums.DeliveryStatusCancelled)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListScopesByRole(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	mine := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)
	seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)

	buyer := Actor{UserID: mine.UserID, Role: enums.UserRoleUser}
	listed, err := svc.List(context.Background(), buyer, ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	listed, err = svc.List(context.Background(), admin, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(repo, enums.PaymentMethodCOD, enums.PaymentStatusPending, enums.DeliveryStatusPending)

	_, err = svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleUser}, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	got, err := svc.Get(context.Background(), Actor{UserID: order.UserID, Role: enums.UserRoleUser}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
