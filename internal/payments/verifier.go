package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Verifier checks gateway callback signatures before any settlement
// mutation is allowed to run.
type Verifier interface {
	Verify(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type hmacVerifier struct {
	secret []byte
}

// NewHMACVerifier builds the HMAC-SHA256 verifier used for gateway
// callbacks. The signed payload is "<orderId>|<paymentId>" and the
// signature is lowercase hex.
func NewHMACVerifier(secret string) (Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret required")
	}
	return &hmacVerifier{secret: []byte(secret)}, nil
}

func (v *hmacVerifier) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal keeps the comparison constant time
	return hmac.Equal([]byte(expected), []byte(signature))
}
