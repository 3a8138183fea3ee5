package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockGateway issues orders in process. It stands in for the provider in
// local development and tests.
type MockGateway struct {
	mu      sync.RWMutex
	keyID   string
	secret  string
	orders  map[string]Order
	failing error
}

func NewMockGateway(keyID, secret string) *MockGateway {
	return &MockGateway{
		keyID:  keyID,
		secret: secret,
		orders: make(map[string]Order),
	}
}

func (g *MockGateway) KeyID() string {
	return g.keyID
}

// FailWith makes every following CreateOrder call fail with err wrapped in
// ErrGateway. A nil err restores normal behaviour.
func (g *MockGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing = err
}

func (g *MockGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failing != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, g.failing)
	}

	order := Order{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}
	g.orders[order.ID] = order
	return &order, nil
}

// Pay simulates the customer completing checkout for orderID and returns the
// payment id and signature the widget would hand to the browser.
func (g *MockGateway) Pay(orderID string) (paymentID, signature string, err error) {
	g.mu.RLock()
	_, exists := g.orders[orderID]
	g.mu.RUnlock()
	if !exists {
		return "", "", fmt.Errorf("%w: unknown order %s", ErrGateway, orderID)
	}

	paymentID = "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return paymentID, Sign(orderID, paymentID, g.secret), nil
}
