package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Pincode  string `json:"pincode" validate:"omitempty,len=6"`
}

func decode(t *testing.T, body string) (samplePayload, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	return payload, err
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	payload, err := decode(t, `{"email":"asha@example.com","quantity":3,"pincode":"411001"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Email != "asha@example.com" || payload.Quantity != 3 {
		t.Fatalf("payload not populated: %+v", payload)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	_, err := decode(t, `{"email":"asha@example.com","quantity":3,"bogus":true}`)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	_, err := decode(t, `{"email":`)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyCollectsFieldErrors(t *testing.T) {
	_, err := decode(t, `{"email":"not-an-email","quantity":0,"pincode":"41"}`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	for _, field := range []string{"email", "quantity", "pincode"} {
		if _, found := details[field]; !found {
			t.Fatalf("expected detail for %s, got %v", field, details)
		}
	}
}
