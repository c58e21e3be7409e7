package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/events"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

const (
	transferFailedMessage    = "Transfer failed. Please try again."
	transferSucceededMessage = "Transfer successful"
)

// TransferAPI submits money transfers.
type TransferAPI interface {
	Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error)
}

// RefreshFunc re-reads the account and transaction views after a transfer.
type RefreshFunc func(ctx context.Context)

// TransferForm holds the raw user input.
type TransferForm struct {
	FromAccountNumber string `json:"fromAccountNumber"`
	ToAccountNumber   string `json:"toAccountNumber"`
	Amount            string `json:"amount"`
}

// Request parses the form. Balances are not checked here; the backend decides.
func (f TransferForm) Request() (domain.TransferRequest, error) {
	details := map[string]any{}
	from, err := domain.ParseAccountNumber(f.FromAccountNumber)
	if err != nil {
		details["fromAccountNumber"] = err.Error()
	}
	to, err := domain.ParseAccountNumber(f.ToAccountNumber)
	if err != nil {
		details["toAccountNumber"] = err.Error()
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if err != nil {
		details["amount"] = "must be a number"
	} else if !amount.IsPositive() {
		details["amount"] = "must be greater than zero"
	}
	if len(details) > 0 {
		return domain.TransferRequest{}, apperrors.NewValidationError("transfer form is invalid", details)
	}
	return domain.TransferRequest{FromAccountNumber: from, ToAccountNumber: to, Amount: amount}, nil
}

// TransferState is what the transfer page renders.
type TransferState struct {
	Form       TransferForm `json:"form"`
	Message    string       `json:"message,omitempty"`
	Succeeded  bool         `json:"succeeded"`
	Submitting bool         `json:"submitting"`
}

// TransferController runs single-shot transfers for one session.
type TransferController struct {
	sessionID  string
	api        TransferAPI
	refresh    RefreshFunc
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu    sync.Mutex
	state TransferState
}

// NewTransferController creates a transfer controller. refresh may be nil.
func NewTransferController(sessionID string, api TransferAPI, refresh RefreshFunc, dispatcher events.Dispatcher, logger *zap.Logger) *TransferController {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferController{sessionID: sessionID, api: api, refresh: refresh, dispatcher: dispatcher, logger: logger}
}

func (c *TransferController) State() TransferState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit sends the transfer once. Success resets the form and triggers one
// refresh; failure keeps the form and shows the backend's message.
func (c *TransferController) Submit(ctx context.Context, form TransferForm) (*domain.TransferResult, error) {
	if !c.begin(form) {
		return nil, apperrors.NewInFlight("transfer")
	}

	req, err := form.Request()
	if err != nil {
		c.finish(form, apperrors.UserMessage(err), false)
		return nil, err
	}

	result, err := c.api.Transfer(ctx, req)
	if err != nil {
		c.logger.Warn("transfer failed", zap.String("session", c.sessionID), zap.Error(err))
		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = transferFailedMessage
		}
		c.finish(form, msg, false)
		return nil, apperrors.NewRemoteFailure(msg, backend.StatusCode(err), err)
	}

	msg := result.Message
	if msg == "" {
		msg = transferSucceededMessage
	}
	c.finish(TransferForm{}, msg, true)

	payload := events.TransferCompletedPayload{
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            req.Amount,
	}
	if result.Transaction != nil {
		payload.TransactionID = result.Transaction.ID
	}
	if err := c.dispatcher.Publish(ctx, events.New(events.EventTransferCompleted, c.sessionID, payload)); err != nil {
		c.logger.Warn("transfer event handlers failed", zap.Error(err))
	}

	if c.refresh != nil {
		c.refresh(ctx)
	}
	return result, nil
}

// Reset empties the form and clears the last outcome.
func (c *TransferController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = TransferState{Submitting: c.state.Submitting}
}

func (c *TransferController) begin(form TransferForm) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Submitting {
		return false
	}
	c.state = TransferState{Form: form, Submitting: true}
	return true
}

func (c *TransferController) finish(form TransferForm, message string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = TransferState{Form: form, Message: message, Succeeded: ok}
}
