package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/api/validators"
	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

type adjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Delta     int       `json:"delta" validate:"required"`
	Reason    *string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type inventoryLogResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	FarmerID      string  `json:"farmer_id"`
	OrderID       *string `json:"order_id,omitempty"`
	Type          string  `json:"type"`
	Quantity      int     `json:"quantity"`
	PreviousStock int     `json:"previous_stock"`
	NewStock      int     `json:"new_stock"`
	Reason        *string `json:"reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func newInventoryLogResponse(record *models.InventoryLog) inventoryLogResponse {
	resp := inventoryLogResponse{
		ID:            record.ID.String(),
		ProductID:     record.ProductID.String(),
		FarmerID:      record.FarmerID.String(),
		Type:          record.Type.String(),
		Quantity:      record.Quantity,
		PreviousStock: record.PreviousStock,
		NewStock:      record.NewStock,
		Reason:        record.Reason,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
	if record.OrderID != nil {
		orderID := record.OrderID.String()
		resp.OrderID = &orderID
	}
	return resp
}

// InventoryAdjust applies a manual stock delta for one of the
// farmer's own products and records the audit entry.
func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			ProductID:   body.ProductID,
			FarmerID:    actor.UserID,
			ActorUserID: actor.UserID,
			Delta:       body.Delta,
			Reason:      body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// InventoryLogs serves the audit trail. Farmers see only their own
// movements; admins see everything.
func InventoryLogs(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := inventory.LogFilter{}
		if raw := query.Get("product_id"); raw != "" {
			productID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product_id"))
				return
			}
			filter.ProductID = productID
		}
		if raw := query.Get("type"); raw != "" {
			logType, parseErr := enums.ParseInventoryLogType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid type"))
				return
			}
			filter.Type = logType
		}
		if raw := query.Get("limit"); raw != "" {
			limit, parseErr := strconv.Atoi(raw)
			if parseErr != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filter.Limit = limit
		}

		switch actor.Role {
		case enums.UserRoleAdmin:
		case enums.UserRoleFarmer:
			filter.FarmerID = actor.UserID
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
			return
		}

		records, err := svc.ListLogs(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]inventoryLogResponse, 0, len(records))
		for i := range records {
			out = append(out, newInventoryLogResponse(&records[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
