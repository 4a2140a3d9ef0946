package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/api/validators"
	"github.com/farmfresh-in/farmfresh-backend/internal/products"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

type createProductRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=160"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category     string  `json:"category" validate:"required,min=2,max=80"`
	Price        string  `json:"price" validate:"required"`
	Unit         string  `json:"unit" validate:"required,oneof=kg grams liters pieces bundles"`
	InitialStock int     `json:"initial_stock" validate:"gte=0"`
	IsOrganic    bool    `json:"is_organic"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	HarvestDate  *string `json:"harvest_date,omitempty"`
	ExpiryDate   *string `json:"expiry_date,omitempty"`
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=2,max=80"`
	Price       *string `json:"price,omitempty"`
	Unit        *string `json:"unit,omitempty" validate:"omitempty,oneof=kg grams liters pieces bundles"`
	IsOrganic   *bool   `json:"is_organic,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	HarvestDate *string `json:"harvest_date,omitempty"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
}

type productResponse struct {
	ID                string     `json:"id"`
	FarmerID          string     `json:"farmer_id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	Category          string     `json:"category"`
	Price             string     `json:"price"`
	Unit              string     `json:"unit"`
	Stock             int        `json:"stock"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	IsOrganic         bool       `json:"is_organic"`
	IsActive          bool       `json:"is_active"`
	ImageURL          *string    `json:"image_url,omitempty"`
	HarvestDate       *time.Time `json:"harvest_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	CreatedAt         string     `json:"created_at"`
}

func newProductResponse(product *models.Product) productResponse {
	return productResponse{
		ID:                product.ID.String(),
		FarmerID:          product.FarmerID.String(),
		Name:              product.Name,
		Description:       product.Description,
		Category:          product.Category,
		Price:             product.Price.StringFixed(2),
		Unit:              product.Unit.String(),
		Stock:             product.Stock,
		LowStockThreshold: product.LowStockThreshold,
		IsOrganic:         product.IsOrganic,
		IsActive:          product.IsActive,
		ImageURL:          product.ImageURL,
		HarvestDate:       product.HarvestDate,
		ExpiryDate:        product.ExpiryDate,
		CreatedAt:         product.CreatedAt.Format(time.RFC3339),
	}
}

func newProductListResponse(items []models.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for i := range items {
		out = append(out, newProductResponse(&items[i]))
	}
	return out
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() || price.IsZero() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return price, nil
}

func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &parsed, nil
}

// ProductCreate lets an approved farmer publish a listing.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		harvestDate, err := parseDate(body.HarvestDate, "harvest_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expiryDate, err := parseDate(body.ExpiryDate, "expiry_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			FarmerID:     actor.UserID,
			Name:         body.Name,
			Description:  body.Description,
			Category:     body.Category,
			Price:        price,
			Unit:         enums.ProductUnit(body.Unit),
			InitialStock: body.InitialStock,
			IsOrganic:    body.IsOrganic,
			ImageURL:     body.ImageURL,
			HarvestDate:  harvestDate,
			ExpiryDate:   expiryDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// ProductList serves the public catalog with optional filters.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		query := r.URL.Query()
		filter := products.ListFilter{
			Category:    query.Get("category"),
			OrganicOnly: query.Get("organic") == "true",
			InStockOnly: query.Get("in_stock") == "true",
			ActiveOnly:  true,
		}
		if raw := query.Get("owner_id"); raw != "" {
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner_id"))
				return
			}
			filter.FarmerID = ownerID
		}
		if raw := query.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filter.Limit = limit
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(items))
	}
}

// ProductListMine lists the authenticated farmer's own products,
// including inactive ones.
func ProductListMine(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), products.ListFilter{FarmerID: actor.UserID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(items))
	}
}

// ProductGet serves a single listing.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductUpdate edits listing fields. Stock never moves through this
// endpoint.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateInput{
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
			IsOrganic:   body.IsOrganic,
			IsActive:    body.IsActive,
			ImageURL:    body.ImageURL,
		}
		if body.Price != nil {
			price, err := parsePrice(*body.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = &price
		}
		if body.Unit != nil {
			unit := enums.ProductUnit(*body.Unit)
			input.Unit = &unit
		}
		if input.HarvestDate, err = parseDate(body.HarvestDate, "harvest_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ExpiryDate, err = parseDate(body.ExpiryDate, "expiry_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), actor.UserID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductDeactivate removes a listing from the catalog without
// deleting its history.
func ProductDeactivate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), actor.UserID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
