package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/market-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionLoggedIn    EventType = "session_logged_in"
	EventSessionInvalidated EventType = "session_invalidated"
	EventOrderPlaced        EventType = "order_placed"
	EventTransferCompleted  EventType = "transfer_completed"
)

// Event is a fact emitted by a portal session.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, sessionID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SessionInvalidatedPayload payload.
type SessionInvalidatedPayload struct {
	Reason string `json:"reason"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID       int64              `json:"order_id"`
	Total         domain.Money       `json:"total"`
	Status        domain.OrderStatus `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Lines         int                `json:"lines"`
}

// TransferCompletedPayload payload.
type TransferCompletedPayload struct {
	FromAccountNumber domain.AccountNumber `json:"from_account_number"`
	ToAccountNumber   domain.AccountNumber `json:"to_account_number"`
	Amount            domain.Money         `json:"amount"`
	TransactionID     int64                `json:"transaction_id,omitempty"`
}
