package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"checkout-gateway/internal/domain"
	"checkout-gateway/internal/infrastructure/payment"
	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports storage health.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Handler struct {
	log     *slog.Logger
	service service.OrderService
	health  HealthChecker
}

func NewHandler(log *slog.Logger, service service.OrderService, health HealthChecker) *Handler {
	return &Handler{log: log, service: service, health: health}
}

type createOrderReq struct {
	Amount          int64  `json:"amount"`
	AmountPaise     int64  `json:"amount_paise"`
	Currency        string `json:"currency"`
	Product         string `json:"product"`
	Qty             int    `json:"qty"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
}

type createOrderResp struct {
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// verifyPaymentReq accepts both plain field names and the razorpay_ prefixed
// ones the checkout widget hands to its success handler.
type verifyPaymentReq struct {
	OrderID           string `json:"order_id"`
	PaymentID         string `json:"payment_id"`
	Signature         string `json:"signature"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type verifyPaymentResp struct {
	Status    domain.OrderStatus `json:"status"`
	OrderID   string             `json:"order_id"`
	PaymentID string             `json:"payment_id,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.healthCheck)
	r.GET("/metrics", h.metrics)

	api := r.Group("/api")
	api.GET("/config", h.getConfig)
	api.POST("/create-order", h.createOrder)
	api.POST("/verify-payment", h.verifyPayment)
	api.GET("/orders", h.listOrders)
	api.GET("/orders/:order_id", h.getOrder)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid request body"})
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = req.AmountPaise
	}

	res, err := h.service.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		Amount:          amount,
		Currency:        req.Currency,
		Product:         req.Product,
		Quantity:        req.Qty,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, createOrderResp{
		OrderID:  res.OrderID,
		KeyID:    res.KeyID,
		Amount:   res.Amount,
		Currency: res.Currency,
	})
}

func (h *Handler) verifyPayment(c *gin.Context) {
	var req verifyPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid request body"})
		return
	}

	res, err := h.service.VerifyPayment(c.Request.Context(), domain.PaymentConfirmation{
		OrderID:   firstNonEmpty(req.OrderID, req.RazorpayOrderID),
		PaymentID: firstNonEmpty(req.PaymentID, req.RazorpayPaymentID),
		Signature: firstNonEmpty(req.Signature, req.RazorpaySignature),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyPaymentResp{
		Status:    res.Status,
		OrderID:   res.OrderID,
		PaymentID: res.PaymentID,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, errorResp{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	orders, err := h.service.ListOrders(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) getConfig(c *gin.Context) {
	keyID, err := h.service.KeyID()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key_id": keyID})
}

func (h *Handler) healthCheck(c *gin.Context) {
	stats := h.health.Health(c.Request.Context())
	code := http.StatusOK
	if stats["status"] != "up" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, stats)
}

func (h *Handler) metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	c.Status(http.StatusOK)
	metrics.Write(c.Writer)
}

// fail maps service errors onto HTTP statuses. Unexpected errors are logged
// and reported without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, errorResp{Error: err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
	case errors.Is(err, payment.ErrGateway):
		c.JSON(http.StatusBadGateway, errorResp{Error: "payment gateway order creation failed"})
	case errors.Is(err, service.ErrGatewayNotConfigured):
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
	default:
		h.log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResp{Error: "internal error"})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
