package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/service"
)

// CheckoutHandler serves the checkout page and the order history.
type CheckoutHandler struct {
	workspaces Workspaces
}

// NewCheckoutHandler constructs handler.
func NewCheckoutHandler(workspaces Workspaces) *CheckoutHandler {
	return &CheckoutHandler{workspaces: workspaces}
}

// CheckoutPage GET /checkout.
func (h *CheckoutHandler) CheckoutPage(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Cart.Refetch(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(h.view(ws))
}

// Checkout POST /checkout. Success navigates to the order list.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	outcome, err := ws.Checkout.Submit(c.UserContext(), req.Form())
	if err != nil {
		return renderWithError(c, err, h.view(ws))
	}
	return c.Redirect(outcome.NavigateTo, http.StatusSeeOther)
}

// Orders GET /orders.
func (h *CheckoutHandler) Orders(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	orders, err := ws.Orders.Mine(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "orders", "data": orders})
}

// Order GET /orders/:id.
func (h *CheckoutHandler) Order(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	order, err := ws.Orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "order", "data": order})
}

func (h *CheckoutHandler) view(ws *service.Workspace) fiber.Map {
	snap := ws.Cart.Snapshot()
	return fiber.Map{
		"view": "checkout",
		"checkout": dto.CheckoutView{
			Cart:           dto.NewCartView(snap.Lines, snap.Aggregate, snap.InFlight),
			State:          ws.Checkout.State(),
			PaymentMethods: domain.PaymentMethods,
		},
	}
}
