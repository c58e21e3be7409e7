package domain

import "github.com/shopspring/decimal"

// TaxRate applied to the cart subtotal.
var TaxRate = decimal.RequireFromString("0.10")

// CartProduct is the product summary embedded in a cart or order line.
type CartProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// CartLine is one product-quantity pairing. Subtotal is computed by the server.
type CartLine struct {
	ID       int64       `json:"id"`
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal Money       `json:"subtotal"`
}

// CartAggregate is derived from the current lines and never stored.
type CartAggregate struct {
	Subtotal Money
	Tax      Money
	Total    Money
}

// Aggregate sums server subtotals and applies TaxRate.
func Aggregate(lines []CartLine) CartAggregate {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
	}
	tax := subtotal.Mul(TaxRate)
	return CartAggregate{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
