package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/checkout"
)

// DashboardHandler serves the account overview and the transfer form.
type DashboardHandler struct {
	workspaces Workspaces
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(workspaces Workspaces) *DashboardHandler {
	return &DashboardHandler{workspaces: workspaces}
}

// Dashboard GET /.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	view, err := ws.Dashboard.Load(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "dashboard", "data": view})
}

// TransferPage GET /transfer.
func (h *DashboardHandler) TransferPage(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "transfer", "state": ws.Transfer.State()})
}

// Transfer POST /transfer. Both outcomes render the transfer view so the
// retained form and the message reach the user.
func (h *DashboardHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	_, err = ws.Transfer.Submit(c.UserContext(), checkout.TransferForm{
		FromAccountNumber: req.FromAccountNumber.String(),
		ToAccountNumber:   req.ToAccountNumber.String(),
		Amount:            req.Amount.String(),
	})
	if err != nil {
		return renderWithError(c, err, fiber.Map{"view": "transfer", "state": ws.Transfer.State()})
	}
	return c.JSON(fiber.Map{"view": "transfer", "state": ws.Transfer.State()})
}
