package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/spec-kit/market-portal/internal/domain"
)

type productPayload struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Price       *json.Number `json:"price,omitempty"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
}

// ListProducts returns the public catalogue.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct lists a new product owned by the caller.
func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	price := domain.WireNumber(in.Price)
	payload := productPayload{Name: &in.Name, Description: &in.Description, Price: &price}
	if in.ImageURL != "" {
		payload.ImageURL = &in.ImageURL
	}
	var product domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct sends only the fields set on patch.
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	payload := productPayload{Name: patch.Name, Description: patch.Description, ImageURL: patch.ImageURL}
	if patch.Price != nil {
		price := domain.WireNumber(*patch.Price)
		payload.Price = &price
	}
	var product domain.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// UploadImage posts the file as the multipart field "image" and returns the
// stored image URL, which the backend answers as plain text.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	body, err := c.send(ctx, http.MethodPost, "/products/upload-image", &buf, withContentType(w.FormDataContentType()))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
