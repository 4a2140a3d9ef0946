package controllers

import (
	"net/http"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/api/validators"
	"github.com/farmfresh-in/farmfresh-backend/internal/payments"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

type paymentIntentRequest struct {
	Items []cartItemRequest `json:"items" validate:"required,min=1,dive"`
}

type paymentIntentResponse struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string                 `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string                 `json:"gateway_payment_id" validate:"required"`
	Signature        string                 `json:"signature" validate:"required"`
	Items            []cartItemRequest      `json:"items" validate:"required,min=1,dive"`
	Address          deliveryAddressRequest `json:"address" validate:"required"`
}

// PaymentIntent opens a gateway order priced from the catalog.
func PaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentIntentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]payments.IntentItem, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, payments.IntentItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		intent, err := svc.CreateIntent(r.Context(), actor.UserID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentIntentResponse{
			GatewayOrderID: intent.GatewayOrderID,
			AmountPaise:    intent.AmountPaise,
			Currency:       intent.Currency,
			KeyID:          intent.KeyID,
		})
	}
}

// PaymentVerify checks the gateway signature and settles the paid
// order. Nothing is written when the signature fails.
func PaymentVerify(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlacePaid(r.Context(), settlement.PaidPlaceInput{
			PlaceInput: settlement.PlaceInput{
				UserID:  actor.UserID,
				Items:   cartItemsFromRequest(body.Items),
				Address: addressFromRequest(body.Address),
			},
			GatewayOrderID:   body.GatewayOrderID,
			GatewayPaymentID: body.GatewayPaymentID,
			Signature:        body.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
