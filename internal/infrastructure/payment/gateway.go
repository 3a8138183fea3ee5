package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrGateway marks any failure talking to the payment provider.
var ErrGateway = errors.New("payment gateway error")

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the provider's view of a freshly created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type PaymentGateway interface {
	// CreateOrder registers an order with the provider. It makes a single
	// attempt; failures wrap ErrGateway.
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// KeyID is the public key the browser widget is opened with.
	KeyID() string
}

// Sign returns the hex HMAC-SHA256 the provider attaches to a successful
// payment for orderID.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature for orderID and paymentID and
// compares it with signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
