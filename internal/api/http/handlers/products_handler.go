package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/service"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// ProductsHandler serves the catalog. Listing and add-to-cart are open to
// every signed-in user; the mutations are mounted behind the privileged guard.
type ProductsHandler struct {
	workspaces Workspaces
}

// NewProductsHandler constructs handler.
func NewProductsHandler(workspaces Workspaces) *ProductsHandler {
	return &ProductsHandler{workspaces: workspaces}
}

// List GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	products, err := ws.Catalog.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "products", "data": products, "privileged": ws.Session.IsPrivileged()})
}

// AddToCart POST /products/:id/cart.
func (h *ProductsHandler) AddToCart(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.QuantityRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.AddLine(c.UserContext(), productID, req.Quantity); err != nil {
		return err
	}
	snap := ws.Cart.Snapshot()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"view": "cart",
		"cart": dto.NewCartView(snap.Lines, snap.Aggregate, snap.InFlight),
	})
}

// Create POST /admin/products. A multipart request may carry the image in
// the "image" field; it is uploaded before the product is created.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var img *service.ImageUpload
	if fh, err := c.FormFile("image"); err == nil {
		file, err := fh.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		defer file.Close()
		img = &service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        file,
		}
	}

	product, err := ws.Catalog.CreateWithImage(c.UserContext(), productForm(req), img)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// Update PUT /admin/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	product, err := ws.Catalog.Update(c.UserContext(), id, productForm(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Delete DELETE /admin/products/:id?confirm=true.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Catalog.Delete(c.UserContext(), id, confirmed(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage POST /admin/products/upload-image. Expects the multipart field "image".
func (h *ProductsHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("Please select an image file", nil)
	}
	file, err := fh.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	url, err := ws.Catalog.UploadImage(c.UserContext(), fh.Filename, fh.Header.Get(fiber.HeaderContentType), fh.Size, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imageUrl": url})
}

func productForm(req dto.ProductRequest) service.ProductForm {
	return service.ProductForm{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.String(),
		ImageURL:    req.ImageURL,
	}
}
