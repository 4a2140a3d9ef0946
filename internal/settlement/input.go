package settlement

import (
	"strings"

	"github.com/google/uuid"

	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

// CartItem is one requested line at placement time.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceInput carries everything needed to settle a cash-on-delivery
// order.
type PlaceInput struct {
	UserID  uuid.UUID
	Items   []CartItem
	Address models.DeliveryAddress
}

// PaidPlaceInput extends PlaceInput with the gateway callback fields
// that gate an online-paid settlement.
type PaidPlaceInput struct {
	PlaceInput
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// CancelInput identifies the order to cancel and who is asking.
type CancelInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	IsAdmin     bool
	Reason      *string
}

func (in PlaceInput) validate() error {
	if in.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(in.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if _, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in cart")
		}
		seen[item.ProductID] = struct{}{}
	}

	return validateAddress(in.Address)
}

func validateAddress(addr models.DeliveryAddress) error {
	required := []struct {
		field string
		value string
	}{
		{"name", addr.Name},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"district", addr.District},
		{"state", addr.State},
		{"pincode", addr.Pincode},
	}
	var missing []string
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			missing = append(missing, entry.field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}
