package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher_RunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventOrderPlaced, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.SessionID)
		return errors.New("audit sink down")
	})
	d.Subscribe(EventOrderPlaced, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.SessionID)
		return nil
	})
	d.Subscribe(EventTransferCompleted, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	err := d.Publish(context.Background(), New(EventOrderPlaced, "s1", OrderPlacedPayload{OrderID: 1}))
	assert.EqualError(t, err, "audit sink down")
	assert.Equal(t, []string{"first:s1", "second:s1"}, seen)
}

func TestNew_StampsEvent(t *testing.T) {
	e := New(EventSessionInvalidated, "s1", SessionInvalidatedPayload{Reason: "expired"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventSessionInvalidated, e.Type)
}
