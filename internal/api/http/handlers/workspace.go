package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/auth"
	"github.com/spec-kit/market-portal/internal/service"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// Workspaces looks up the workspace of a browser session.
type Workspaces interface {
	Workspace(ctx context.Context, id string) (*service.Workspace, error)
}

func currentWorkspace(c *fiber.Ctx, workspaces Workspaces) (*service.Workspace, error) {
	id, ok := auth.SessionID(c)
	if !ok {
		return nil, apperrors.NewSessionInvalid("no session bound to request", nil)
	}
	return workspaces.Workspace(c.UserContext(), id)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func confirmed(c *fiber.Ctx) bool {
	v, _ := strconv.ParseBool(c.Query("confirm"))
	return v
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}

// renderWithError renders a view together with the error envelope, keeping
// the view's retained state visible next to the message.
func renderWithError(c *fiber.Ctx, err error, view fiber.Map) error {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code == apperrors.CodeInFlight || domainErr.HTTPStatus >= 500 {
		return err
	}
	envelope := fiber.Map{"code": domainErr.Code, "message": domainErr.Message}
	if len(domainErr.Details) > 0 {
		envelope["details"] = domainErr.Details
	}
	view["error"] = envelope
	return c.Status(domainErr.HTTPStatus).JSON(view)
}
