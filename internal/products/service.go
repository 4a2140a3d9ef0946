package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

// CreateInput captures a new product listing. InitialStock seeds the
// ledger through a STOCK_ADDED audit record.
type CreateInput struct {
	FarmerID     uuid.UUID
	Name         string
	Description  *string
	Category     string
	Price        decimal.Decimal
	Unit         enums.ProductUnit
	InitialStock int
	IsOrganic    bool
	ImageURL     *string
	HarvestDate  *time.Time
	ExpiryDate   *time.Time
}

// UpdateInput carries the editable listing fields. Stock is absent on
// purpose; it moves only through the inventory service.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Unit        *enums.ProductUnit
	IsOrganic   *bool
	IsActive    *bool
	ImageURL    *string
	HarvestDate *time.Time
	ExpiryDate  *time.Time
}

// Service exposes product catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Update(ctx context.Context, farmerID, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	Deactivate(ctx context.Context, farmerID, productID uuid.UUID) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
}

// NewService wires a product service with its dependencies.
func NewService(repo Repository, inv inventory.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{repo: repo, inventory: inv}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", input.Unit))
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}

	product := &models.Product{
		ID:          uuid.New(),
		FarmerID:    input.FarmerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Unit:        input.Unit,
		IsOrganic:   input.IsOrganic,
		IsActive:    true,
		ImageURL:    input.ImageURL,
		HarvestDate: input.HarvestDate,
		ExpiryDate:  input.ExpiryDate,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if input.InitialStock > 0 {
		updated, err := s.inventory.Adjust(ctx, inventory.AdjustInput{
			ProductID:   product.ID,
			FarmerID:    product.FarmerID,
			ActorUserID: product.FarmerID,
			Delta:       input.InitialStock,
		})
		if err != nil {
			return nil, err
		}
		product = updated
	}

	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, farmerID, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another farmer")
	}

	fields := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		fields["price"] = *input.Price
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", *input.Unit))
		}
		fields["unit"] = *input.Unit
	}
	if input.IsOrganic != nil {
		fields["is_organic"] = *input.IsOrganic
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if input.ImageURL != nil {
		fields["image_url"] = *input.ImageURL
	}
	if input.HarvestDate != nil {
		fields["harvest_date"] = *input.HarvestDate
	}
	if input.ExpiryDate != nil {
		fields["expiry_date"] = *input.ExpiryDate
	}

	if len(fields) == 0 {
		return product, nil
	}

	if err := s.repo.Updates(ctx, productID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.Get(ctx, productID)
}

func (s *service) Deactivate(ctx context.Context, farmerID, productID uuid.UUID) error {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if product.FarmerID != farmerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another farmer")
	}
	if err := s.repo.Updates(ctx, productID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}
