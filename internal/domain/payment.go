package domain

// PaymentConfirmation is what the hosted checkout widget hands back to the
// browser once the customer has paid.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentResult is the outcome of checking a confirmation against an order.
type PaymentResult struct {
	OrderID   string
	PaymentID string
	Status    OrderStatus
}
