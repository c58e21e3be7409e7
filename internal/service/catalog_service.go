package service

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// MaxImageBytes bounds product image uploads.
const MaxImageBytes = 10 << 20

// ProductsAPI is the backend catalogue surface.
type ProductsAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// CatalogService browses and edits products.
type CatalogService struct {
	api    ProductsAPI
	logger *zap.Logger
}

// NewCatalogService builds the service.
func NewCatalogService(api ProductsAPI, logger *zap.Logger) *CatalogService {
	return &CatalogService{api: api, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, remoteFailure(err, "Failed to fetch products")
	}
	return products, nil
}

// ProductForm is the raw create/update form. Empty fields are left unchanged on update.
type ProductForm struct {
	Name        string
	Description string
	Price       string
	ImageURL    string
}

func (s *CatalogService) Create(ctx context.Context, form ProductForm) (*domain.Product, error) {
	return s.CreateWithImage(ctx, form, nil)
}

// ImageUpload is an image picked for a new product.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateWithImage uploads img first when given and creates the product with
// the returned URL. A failed upload aborts the creation.
func (s *CatalogService) CreateWithImage(ctx context.Context, form ProductForm, img *ImageUpload) (*domain.Product, error) {
	in, err := form.input()
	if err != nil {
		return nil, err
	}
	if img != nil {
		url, err := s.UploadImage(ctx, img.Filename, img.ContentType, img.Size, img.Body)
		if err != nil {
			return nil, err
		}
		in.ImageURL = url
	}

	product, err := s.api.CreateProduct(ctx, in)
	if err != nil {
		return nil, remoteFailure(err, "Failed to create product")
	}
	s.logger.Info("product created", zap.Int64("product_id", product.ID))
	return product, nil
}

func (f ProductForm) input() (domain.ProductInput, error) {
	details := map[string]any{}
	if strings.TrimSpace(f.Name) == "" {
		details["name"] = "required"
	}
	price, err := parseAmount(f.Price, false)
	if err != nil {
		details["price"] = err.Error()
	}
	if len(details) > 0 {
		return domain.ProductInput{}, apperrors.NewValidationError("product form is invalid", details)
	}
	return domain.ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       price,
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, form ProductForm) (*domain.Product, error) {
	var patch domain.ProductPatch
	if v := strings.TrimSpace(form.Name); v != "" {
		patch.Name = &v
	}
	if v := strings.TrimSpace(form.Description); v != "" {
		patch.Description = &v
	}
	if v := strings.TrimSpace(form.ImageURL); v != "" {
		patch.ImageURL = &v
	}
	if strings.TrimSpace(form.Price) != "" {
		price, err := parseAmount(form.Price, false)
		if err != nil {
			return nil, apperrors.NewValidationError("product form is invalid", map[string]any{"price": err.Error()})
		}
		patch.Price = &price
	}

	product, err := s.api.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, remoteFailure(err, "Failed to update product")
	}
	return product, nil
}

// Delete removes a product after the user confirmed.
func (s *CatalogService) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return apperrors.NewConfirmationRequired("Are you sure you want to delete this product?")
	}
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return remoteFailure(err, "Failed to delete product")
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// UploadImage validates and forwards an image, returning its URL.
func (s *CatalogService) UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.NewValidationError("Please select an image file", map[string]any{"contentType": contentType})
	}
	if size > MaxImageBytes {
		return "", apperrors.NewValidationError("Image must be smaller than 10MB", map[string]any{"size": size})
	}
	url, err := s.api.UploadImage(ctx, filename, contentType, io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", remoteFailure(err, "Failed to upload image")
	}
	return url, nil
}
