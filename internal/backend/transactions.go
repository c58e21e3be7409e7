package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spec-kit/market-portal/internal/domain"
)

type transferPayload struct {
	FromAccountNumber json.Number `json:"fromAccountNumber"`
	ToAccountNumber   json.Number `json:"toAccountNumber"`
	Amount            json.Number `json:"amount"`
}

func (c *Client) MyTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/me", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Transfer moves money between accounts. The backend may answer with a
// transaction object or a plain confirmation message.
func (c *Client) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	payload := transferPayload{
		FromAccountNumber: req.FromAccountNumber.Wire(),
		ToAccountNumber:   req.ToAccountNumber.Wire(),
		Amount:            domain.WireNumber(req.Amount),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, http.MethodPost, "/api/transactions/transfer", bytes.NewReader(data), withContentType("application/json"))
	if err != nil {
		return nil, err
	}
	return decodeTransferResult(body), nil
}

func decodeTransferResult(body []byte) *domain.TransferResult {
	var tx domain.Transaction
	if err := json.Unmarshal(body, &tx); err == nil && tx.ID != 0 {
		return &domain.TransferResult{Transaction: &tx}
	}
	var msg string
	if err := json.Unmarshal(body, &msg); err == nil {
		return &domain.TransferResult{Message: msg}
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		return &domain.TransferResult{Message: envelope.Message}
	}
	return &domain.TransferResult{Message: strings.TrimSpace(string(body))}
}
