package dto

import "github.com/spec-kit/market-portal/internal/domain"

// AddToCartRequest payload.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" form:"productId"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

// QuantityRequest payload.
type QuantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// CartLineView is one rendered cart line.
type CartLineView struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

// CartView is the rendered cart with its totals.
type CartView struct {
	Lines    []CartLineView `json:"lines"`
	Subtotal string         `json:"subtotal"`
	Tax      string         `json:"tax"`
	Total    string         `json:"total"`
	InFlight []string       `json:"inFlight"`
}

// NewCartView renders lines and totals.
func NewCartView(lines []domain.CartLine, agg domain.CartAggregate, inFlight []string) CartView {
	view := CartView{
		Lines:    make([]CartLineView, 0, len(lines)),
		Subtotal: domain.FormatMoney(agg.Subtotal),
		Tax:      domain.FormatMoney(agg.Tax),
		Total:    domain.FormatMoney(agg.Total),
		InFlight: inFlight,
	}
	if view.InFlight == nil {
		view.InFlight = []string{}
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, CartLineView{
			ID:          l.ID,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			UnitPrice:   domain.FormatMoney(l.Product.Price),
			Quantity:    l.Quantity,
			Subtotal:    domain.FormatMoney(l.Subtotal),
		})
	}
	return view
}
