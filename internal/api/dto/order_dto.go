package dto

import (
	"encoding/json"

	"github.com/spec-kit/market-portal/internal/checkout"
)

// CheckoutRequest payload.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" form:"shippingAddress"`
	BillingAddress  string `json:"billingAddress" form:"billingAddress"`
	SameAsShipping  bool   `json:"sameAsShipping" form:"sameAsShipping"`
	PaymentMethod   string `json:"paymentMethod" form:"paymentMethod"`
}

// Form converts the payload to the checkout form.
func (r CheckoutRequest) Form() checkout.Form {
	return checkout.Form{
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		SameAsShipping:  r.SameAsShipping,
		PaymentMethod:   r.PaymentMethod,
	}
}

// CheckoutView renders the checkout page.
type CheckoutView struct {
	Cart           CartView       `json:"cart"`
	State          checkout.State `json:"state"`
	PaymentMethods []string       `json:"paymentMethods"`
}

// StatusRequest payload for order status changes.
type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// CreateUserRequest payload for privileged user creation.
type CreateUserRequest struct {
	Name           string      `json:"name" form:"name"`
	Email          string      `json:"email" form:"email"`
	Password       string      `json:"password" form:"password"`
	AccountNumber  json.Number `json:"accountNumber" form:"accountNumber"`
	InitialBalance json.Number `json:"initialBalance" form:"initialBalance"`
}
