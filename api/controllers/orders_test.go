package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfresh-in/farmfresh-backend/api/middleware"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

type stubSettlement struct {
	placed    *models.Order
	cancelled *models.Order
	err       error

	gotPlace  *settlement.PlaceInput
	gotCancel *settlement.CancelInput
}

func (s *stubSettlement) PlaceCOD(_ context.Context, input settlement.PlaceInput) (*models.Order, error) {
	s.gotPlace = &input
	return s.placed, s.err
}

func (s *stubSettlement) PlacePaid(_ context.Context, input settlement.PaidPlaceInput) (*models.Order, error) {
	s.gotPlace = &input.PlaceInput
	return s.placed, s.err
}

func (s *stubSettlement) Cancel(_ context.Context, input settlement.CancelInput) (*models.Order, error) {
	s.gotCancel = &input
	return s.cancelled, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func authedRequest(method, target, body string, userID uuid.UUID, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role.String())
	return req.WithContext(ctx)
}

func sampleOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		FarmerID:       uuid.New(),
		TotalPrice:     decimal.RequireFromString("180.00"),
		PaymentMethod:  enums.PaymentMethodCOD,
		PaymentStatus:  enums.PaymentStatusPending,
		DeliveryStatus: enums.DeliveryStatusPending,
		Items: []models.OrderItem{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Name:      "Tomatoes",
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("90.00"),
			},
		},
		DeliveryAddress: models.DeliveryAddress{
			Name:     "Asha",
			Phone:    "9876543210",
			Address:  "12 Lake Road",
			District: "Pune",
			State:    "Maharashtra",
			Pincode:  "411001",
		},
	}
}

const placeBody = `{
	"items": [{"product_id": "%s", "quantity": 2}],
	"address": {
		"name": "Asha",
		"phone": "9876543210",
		"address": "12 Lake Road",
		"district": "Pune",
		"state": "Maharashtra",
		"pincode": "411001"
	}
}`

func TestOrderPlaceCODSuccess(t *testing.T) {
	userID := uuid.New()
	order := sampleOrder(userID)
	svc := &stubSettlement{placed: order}
	handler := OrderPlaceCOD(svc, nil)

	body := strings.ReplaceAll(placeBody, "%s", order.Items[0].ProductID.String())
	req := authedRequest(http.MethodPost, "/api/v1/orders/cod", body, userID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotPlace == nil {
		t.Fatal("settlement service was not called")
	}
	if svc.gotPlace.UserID != userID {
		t.Fatalf("expected buyer %s got %s", userID, svc.gotPlace.UserID)
	}
	if len(svc.gotPlace.Items) != 1 || svc.gotPlace.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart items: %+v", svc.gotPlace.Items)
	}

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalPrice != "180.00" {
		t.Fatalf("expected total 180.00 got %s", envelope.Data.TotalPrice)
	}
	if envelope.Data.PaymentMethod != "cod" {
		t.Fatalf("expected cod got %s", envelope.Data.PaymentMethod)
	}
}

func TestOrderPlaceCODRejectsEmptyCart(t *testing.T) {
	userID := uuid.New()
	svc := &stubSettlement{}
	handler := OrderPlaceCOD(svc, nil)

	body := `{"items": [], "address": {"name":"A","phone":"9876543210","address":"12 Lake Road","district":"Pune","state":"MH","pincode":"411001"}}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/cod", body, userID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotPlace != nil {
		t.Fatal("settlement service should not be called for an empty cart")
	}
}

func TestOrderPlaceCODRequiresAuthContext(t *testing.T) {
	handler := OrderPlaceCOD(&stubSettlement{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/cod", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderCancelMapsStateConflict(t *testing.T) {
	userID := uuid.New()
	svc := &stubSettlement{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order already shipped")}
	handler := OrderCancel(svc, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", "", userID, enums.UserRoleUser)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if svc.gotCancel == nil || svc.gotCancel.OrderID != orderID {
		t.Fatalf("cancel input not forwarded: %+v", svc.gotCancel)
	}
	if svc.gotCancel.IsAdmin {
		t.Fatal("regular user must not carry admin override")
	}
}

func TestOrderCancelAdminOverride(t *testing.T) {
	adminID := uuid.New()
	order := sampleOrder(uuid.New())
	svc := &stubSettlement{cancelled: order}
	handler := OrderCancel(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/cancel", "", adminID, enums.UserRoleAdmin)
	req = withURLParam(req, "orderId", order.ID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotCancel == nil || !svc.gotCancel.IsAdmin {
		t.Fatal("admin flag should be set for admin callers")
	}
}
