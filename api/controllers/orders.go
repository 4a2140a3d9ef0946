package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/api/validators"
	"github.com/farmfresh-in/farmfresh-backend/internal/orders"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type deliveryAddressRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Address  string `json:"address" validate:"required,min=5,max=300"`
	District string `json:"district" validate:"required,min=2,max=80"`
	State    string `json:"state" validate:"required,min=2,max=80"`
	Pincode  string `json:"pincode" validate:"required,len=6"`
}

type placeOrderRequest struct {
	Items   []cartItemRequest      `json:"items" validate:"required,min=1,dive"`
	Address deliveryAddressRequest `json:"address" validate:"required"`
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=shipped delivered"`
}

type cancelOrderRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type orderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type deliveryAddressResponse struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	District string `json:"district"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type orderResponse struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id"`
	FarmerID         string                  `json:"farmer_id"`
	Items            []orderItemResponse     `json:"items"`
	TotalPrice       string                  `json:"total_price"`
	PaymentMethod    string                  `json:"payment_method"`
	PaymentStatus    string                  `json:"payment_status"`
	DeliveryStatus   string                  `json:"delivery_status"`
	DeliveryAddress  deliveryAddressResponse `json:"delivery_address"`
	GatewayOrderID   *string                 `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string                 `json:"gateway_payment_id,omitempty"`
	DeliveredAt      *time.Time              `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt        string                  `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}
	return orderResponse{
		ID:             order.ID.String(),
		UserID:         order.UserID.String(),
		FarmerID:       order.FarmerID.String(),
		Items:          items,
		TotalPrice:     order.TotalPrice.StringFixed(2),
		PaymentMethod:  order.PaymentMethod.String(),
		PaymentStatus:  order.PaymentStatus.String(),
		DeliveryStatus: order.DeliveryStatus.String(),
		DeliveryAddress: deliveryAddressResponse{
			Name:     order.DeliveryAddress.Name,
			Phone:    order.DeliveryAddress.Phone,
			Address:  order.DeliveryAddress.Address,
			District: order.DeliveryAddress.District,
			State:    order.DeliveryAddress.State,
			Pincode:  order.DeliveryAddress.Pincode,
		},
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: order.GatewayPaymentID,
		DeliveredAt:      order.DeliveredAt,
		CancelledAt:      order.CancelledAt,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
	}
}

func cartItemsFromRequest(items []cartItemRequest) []settlement.CartItem {
	out := make([]settlement.CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, settlement.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

func addressFromRequest(addr deliveryAddressRequest) models.DeliveryAddress {
	return models.DeliveryAddress{
		Name:     addr.Name,
		Phone:    addr.Phone,
		Address:  addr.Address,
		District: addr.District,
		State:    addr.State,
		Pincode:  addr.Pincode,
	}
}

// OrderPlaceCOD settles a cash-on-delivery order.
func OrderPlaceCOD(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceCOD(r.Context(), settlement.PlaceInput{
			UserID:  actor.UserID,
			Items:   cartItemsFromRequest(body.Items),
			Address: addressFromRequest(body.Address),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderList serves orders scoped to the caller's role.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := orders.ListFilter{}
		if raw := query.Get("payment_status"); raw != "" {
			status, parseErr := enums.ParsePaymentStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment_status"))
				return
			}
			filter.PaymentStatus = status
		}
		if raw := query.Get("delivery_status"); raw != "" {
			status, parseErr := enums.ParseDeliveryStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid delivery_status"))
				return
			}
			filter.DeliveryStatus = status
		}
		if raw := query.Get("limit"); raw != "" {
			limit, parseErr := strconv.Atoi(raw)
			if parseErr != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filter.Limit = limit
		}

		items, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(items))
		for i := range items {
			out = append(out, newOrderResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderGet serves a single order the caller is allowed to see.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderUpdateDeliveryStatus advances fulfilment. Cancellation has its
// own endpoint because it restores stock.
func OrderUpdateDeliveryStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDeliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateDeliveryStatus(r.Context(), actor, orderID, enums.DeliveryStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel cancels an order and restores the reserved stock.
func OrderCancel(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelOrderRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Cancel(r.Context(), settlement.CancelInput{
			OrderID:     orderID,
			ActorUserID: actor.UserID,
			IsAdmin:     actor.Role == enums.UserRoleAdmin,
			Reason:      body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
