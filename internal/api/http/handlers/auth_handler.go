package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/dto"
	"github.com/spec-kit/market-portal/internal/auth"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/service"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	service    *service.AuthService
	workspaces Workspaces
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, workspaces Workspaces) *AuthHandler {
	return &AuthHandler{service: authService, workspaces: workspaces}
}

// LoginPage GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"view": "login", "next": safeNext(c.Query("next"))})
}

// Login POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if _, err := h.service.Login(c.UserContext(), ws.Session, req.Email, req.Password); err != nil {
		return err
	}
	ws.Reset()
	return c.Redirect(safeNext(req.Next), http.StatusSeeOther)
}

// Register POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	_, err = h.service.Register(c.UserContext(), ws.Session, service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		AccountNumber:  req.AccountNumber.String(),
		BankName:       req.BankName,
		InitialBalance: req.InitialBalance.String(),
	})
	if err != nil {
		return err
	}
	ws.Reset()
	return c.Redirect("/", http.StatusSeeOther)
}

// Logout POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	if err := ws.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.Redirect(auth.LoginPath, http.StatusSeeOther)
}

// Session GET /session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	ws, err := currentWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	snap := ws.Session.Current(c.UserContext())
	view := dto.SessionView{
		Authenticated: snap.Authenticated(),
		RoleStatus:    snap.Role.Status.String(),
		Privileged:    snap.Authenticated() && snap.Role.IsPrivileged(),
	}
	if snap.Authenticated() && snap.Role.Status == domain.RoleResolved {
		view.Role = string(snap.Role.Role)
	}
	return c.JSON(view)
}

// safeNext only follows local paths. Browsers treat a backslash as a slash,
// so any next carrying one is refused.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsRune(next, '\\') {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, auth.LoginPath) {
		return "/"
	}
	return next
}
