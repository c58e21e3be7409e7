package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/service"
)

// CartHandler serves the cart page and its mutations. Every mutation answers
// with the refetched cart.
type CartHandler struct {
	workspaces Workspaces
}

// NewCartHandler constructs handler.
func NewCartHandler(workspaces Workspaces) *CartHandler {
	return &CartHandler{workspaces: workspaces}
}

// GetCart GET /cart.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.Refetch(c.UserContext()); err != nil {
		return err
	}
	return h.render(c, ws)
}

// AddItem POST /cart/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req dto.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.AddLine(c.UserContext(), req.ProductID, req.Quantity); err != nil {
		return err
	}
	return h.render(c, ws)
}

// UpdateItem PUT /cart/items/:id.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	lineID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.SetQuantity(c.UserContext(), lineID, req.Quantity); err != nil {
		return renderWithError(c, err, h.view(ws))
	}
	return h.render(c, ws)
}

// RemoveItem DELETE /cart/items/:id.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	lineID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.RemoveLine(c.UserContext(), lineID); err != nil {
		return renderWithError(c, err, h.view(ws))
	}
	return h.render(c, ws)
}

// Clear DELETE /cart?confirm=true.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.ClearCart(c.UserContext(), confirmed(c)); err != nil {
		return renderWithError(c, err, h.view(ws))
	}
	return h.render(c, ws)
}

func (h *CartHandler) render(c *fiber.Ctx, ws *service.Workspace) error {
	return c.JSON(h.view(ws))
}

func (h *CartHandler) view(ws *service.Workspace) fiber.Map {
	snap := ws.Cart.Snapshot()
	return fiber.Map{"view": "cart", "cart": dto.NewCartView(snap.Lines, snap.Aggregate, snap.InFlight)}
}
