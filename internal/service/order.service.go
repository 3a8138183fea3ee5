package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"checkout-gateway/internal/domain"
	"checkout-gateway/internal/infrastructure/payment"
	"checkout-gateway/internal/logging"
	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/repo"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrUnsupportedCurrency  = errors.New("unsupported currency")
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and 20")
	ErrInvalidPayment       = errors.New("order_id, payment_id and signature are required")
	ErrOrderNotFound        = errors.New("order not found")
	ErrGatewayNotConfigured = errors.New("payment gateway credentials are not configured")
)

const (
	minQuantity = 1
	maxQuantity = 20

	DefaultListLimit = 50
	MaxListLimit     = 500
)

type CreateOrderRequest struct {
	Amount          int64
	Currency        string
	Product         string
	Quantity        int
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
}

type CreateOrderResult struct {
	OrderID  string
	KeyID    string
	Amount   int64
	Currency string
}

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) (*domain.PaymentResult, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	KeyID() (string, error)
}

type orderService struct {
	orderRepo  repo.OrderRepo
	paymentGtw payment.PaymentGateway
	secret     string
	currencies []string
	logger     *slog.Logger
	now        func() time.Time
}

func NewOrderService(
	orderRepo repo.OrderRepo,
	paymentGtw payment.PaymentGateway,
	secret string,
	currencies []string,
	logger *slog.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		paymentGtw: paymentGtw,
		secret:     secret,
		currencies: currencies,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *orderService) KeyID() (string, error) {
	if !s.configured() {
		return "", ErrGatewayNotConfigured
	}
	return s.paymentGtw.KeyID(), nil
}

func (s *orderService) configured() bool {
	return s.paymentGtw.KeyID() != "" && s.secret != ""
}

// CreateOrder registers the order with the gateway and stores it as created.
// Nothing is stored when the gateway call fails.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !s.configured() {
		return nil, ErrGatewayNotConfigured
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !slices.Contains(s.currencies, currency) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, req.Currency)
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = minQuantity
	}
	if quantity < minQuantity || quantity > maxQuantity {
		return nil, ErrInvalidQuantity
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	notes := map[string]string{"qty": strconv.Itoa(quantity)}
	if req.Product != "" {
		notes["product"] = req.Product
	}
	if req.CustomerName != "" {
		notes["customer"] = req.CustomerName
	}

	start := time.Now()
	gtwOrder, err := s.paymentGtw.CreateOrder(ctx, payment.OrderRequest{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	metrics.GatewayDuration.UpdateDuration(start)
	if err != nil {
		metrics.GatewayErrors.Inc()
		s.logger.ErrorContext(ctx, "gateway order creation failed", "receipt", receipt, "error", err)
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:              gtwOrder.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Status:          domain.OrderCreated,
		Receipt:         receipt,
		Product:         req.Product,
		Quantity:        quantity,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", order.ID, err)
	}

	metrics.OrdersCreated.Inc()
	s.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"amount", order.Amount,
		"currency", order.Currency,
		"product", order.Product,
		"qty", order.Quantity,
	)

	return &CreateOrderResult{
		OrderID:  order.ID,
		KeyID:    s.paymentGtw.KeyID(),
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

// VerifyPayment settles a created order as paid when the signature matches
// and as failed otherwise. An order that is already settled is reported as
// is and never rewritten.
func (s *orderService) VerifyPayment(ctx context.Context, c domain.PaymentConfirmation) (*domain.PaymentResult, error) {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return nil, ErrInvalidPayment
	}
	if s.secret == "" {
		return nil, ErrGatewayNotConfigured
	}

	ctx = logging.AppendCtx(ctx, slog.String("order_id", c.OrderID))

	order, err := s.orderRepo.FindById(ctx, c.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		metrics.UnknownOrders.Inc()
		s.logger.WarnContext(ctx, "verification for unknown order", "payment_id", c.PaymentID)
		return nil, ErrOrderNotFound
	}

	if order.Status.Settled() {
		s.logger.WarnContext(ctx, "order already settled", "status", order.Status, "payment_id", c.PaymentID)
		return settledResult(order), nil
	}

	status := domain.OrderPaid
	if !payment.VerifySignature(c.OrderID, c.PaymentID, c.Signature, s.secret) {
		status = domain.OrderFailed
	}

	updated, err := s.orderRepo.SettleOrder(ctx, c.OrderID, status, c.PaymentID, c.Signature, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		// settled by a concurrent request between the read and the update
		current, err := s.orderRepo.FindById(ctx, c.OrderID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrOrderNotFound
		}
		return settledResult(current), nil
	}

	if status == domain.OrderPaid {
		metrics.PaymentsPaid.Inc()
		s.logger.InfoContext(ctx, "payment verified", "payment_id", c.PaymentID)
	} else {
		metrics.PaymentsFailed.Inc()
		s.logger.WarnContext(ctx, "payment signature mismatch", "payment_id", c.PaymentID)
	}

	return &domain.PaymentResult{
		OrderID:   c.OrderID,
		PaymentID: c.PaymentID,
		Status:    status,
	}, nil
}

func settledResult(order *domain.Order) *domain.PaymentResult {
	res := &domain.PaymentResult{OrderID: order.ID, Status: order.Status}
	if order.PaymentID != nil {
		res.PaymentID = *order.PaymentID
	}
	return res
}

func (s *orderService) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.orderRepo.ListRecent(ctx, limit)
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.FindById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
