package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spec-kit/market-portal/internal/domain"
)

// Me returns the current user with their accounts.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveRole looks up the role bound to token. A payload without a role is
// reported as malformed.
func (c *Client) ResolveRole(ctx context.Context, token string) (domain.Role, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user, withToken(token)); err != nil {
		return domain.RoleUnset, err
	}
	role, err := domain.ParseRole(user.Role)
	if err != nil {
		return domain.RoleUnset, fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

type newUserPayload struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	AccountNumber  json.Number `json:"accountNumber"`
	InitialBalance json.Number `json:"initialBalance"`
}

// CreateUser provisions a user. Privileged.
func (c *Client) CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	payload := newUserPayload{
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.Password,
		AccountNumber:  u.AccountNumber.Wire(),
		InitialBalance: domain.WireNumber(u.InitialBalance),
	}
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/users", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
