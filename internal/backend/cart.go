package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/market-portal/internal/domain"
)

type addToCartPayload struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type quantityPayload struct {
	Quantity int `json:"quantity"`
}

// GetCart returns every line of the caller's cart.
func (c *Client) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := c.do(ctx, http.MethodPost, "/api/cart", addToCartPayload{ProductID: productID, Quantity: quantity}, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) UpdateCartQuantity(ctx context.Context, lineID int64, quantity int) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", lineID), quantityPayload{Quantity: quantity}, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) RemoveCartLine(ctx context.Context, lineID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

// CartTotal returns the server-computed total.
func (c *Client) CartTotal(ctx context.Context) (domain.Money, error) {
	var resp struct {
		Total domain.Money `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart/total", nil, &resp); err != nil {
		return domain.Money{}, err
	}
	return resp.Total, nil
}
