package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/spec-kit/market-portal/internal/domain"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}

type registerPayload struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	AccountNumber  json.Number `json:"accountNumber"`
	BankName       string      `json:"bankName"`
	InitialBalance json.Number `json:"initialBalance"`
}

// Register creates an account and returns a token for it.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	payload := registerPayload{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		AccountNumber:  req.AccountNumber.Wire(),
		BankName:       req.BankName,
		InitialBalance: domain.WireNumber(req.InitialBalance),
	}
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &resp, anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}
