package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/products"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/razorpay"
)

// GatewayClient opens payment intents at the gateway.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.GatewayOrder, error)
	KeyID() string
}

// IntentItem is one cart line in an intent request.
type IntentItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Intent is the client-facing payload needed to open gateway checkout.
type Intent struct {
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	KeyID          string
}

// Service opens payment intents priced from the catalog, never from
// client-supplied amounts.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, items []IntentItem) (*Intent, error)
}

type service struct {
	gateway  GatewayClient
	products products.Repository
}

// NewService wires a payment service with its dependencies.
func NewService(gateway GatewayClient, productRepo products.Repository) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{gateway: gateway, products: productRepo}, nil
}

func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID, items []IntentItem) (*Intent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		product, err := s.loadProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is no longer available", product.Name))
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, total, receipt)
	if err != nil {
		return nil, err
	}

	return &Intent{
		GatewayOrderID: order.ID,
		AmountPaise:    order.AmountPaise,
		Currency:       order.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
