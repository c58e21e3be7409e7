package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/service"
)

// AdminHandler serves order management and user creation.
type AdminHandler struct {
	workspaces Workspaces
}

// NewAdminHandler constructs handler.
func NewAdminHandler(workspaces Workspaces) *AdminHandler {
	return &AdminHandler{workspaces: workspaces}
}

// Orders GET /admin/orders.
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	orders, err := ws.Admin.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"view": "admin-orders", "data": orders})
}

// UpdateStatus PATCH /admin/orders/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	order, err := ws.Admin.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": order})
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	user, err := ws.Admin.CreateUser(c.UserContext(), service.NewUserForm{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		AccountNumber:  req.AccountNumber.String(),
		InitialBalance: req.InitialBalance.String(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": user})
}
