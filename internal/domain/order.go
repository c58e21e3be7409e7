package domain

import (
	"fmt"
	"strings"
)

// OrderStatus enumerates order lifecycle states. Only privileged users change it, server side.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus validates a status name.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, status := range orderStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// OrderLine is an immutable line of a placed order.
type OrderLine struct {
	ID              int64       `json:"id"`
	Product         CartProduct `json:"product"`
	Quantity        int         `json:"quantity"`
	PriceAtPurchase Money       `json:"priceAtPurchase"`
	Subtotal        Money       `json:"subtotal"`
}

// Order is the snapshot returned by checkout. The client never recomputes it.
type Order struct {
	ID              int64       `json:"id"`
	Lines           []OrderLine `json:"orderItems"`
	Subtotal        Money       `json:"subtotal"`
	Tax             Money       `json:"tax"`
	Total           Money       `json:"total"`
	Status          OrderStatus `json:"status"`
	CreatedAt       Timestamp   `json:"createdAt"`
	ShippingAddress string      `json:"shippingAddress"`
	BillingAddress  string      `json:"billingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

// CheckoutRequest is the single commit request.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

// PaymentMethods accepted by checkout.
var PaymentMethods = []string{"Credit Card", "Debit Card", "PayPal", "Bank Transfer"}

// DefaultPaymentMethod is preselected on the checkout form.
const DefaultPaymentMethod = "Credit Card"
