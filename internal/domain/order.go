package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// Settled reports whether the order has left the created state.
func (s OrderStatus) Settled() bool {
	return s == OrderPaid || s == OrderFailed
}

type Order struct {
	ID              string      `json:"order_id"`
	Amount          int64       `json:"amount"`
	Currency        string      `json:"currency"`
	Status          OrderStatus `json:"status"`
	Receipt         string      `json:"receipt"`
	Product         string      `json:"product,omitempty"`
	Quantity        int         `json:"qty"`
	CustomerName    string      `json:"customer_name,omitempty"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	PaymentID       *string     `json:"payment_id,omitempty"`
	Signature       *string     `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	VerifiedAt      *time.Time  `json:"verified_at,omitempty"`
}
