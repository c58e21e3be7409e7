package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/cart"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/events"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

type cartBackend struct {
	lines    []domain.CartLine
	getCalls int
}

func (b *cartBackend) GetCart(context.Context) ([]domain.CartLine, error) {
	b.getCalls++
	return b.lines, nil
}
func (b *cartBackend) AddToCart(context.Context, int64, int) (*domain.CartLine, error) {
	return nil, errors.New("unused")
}
func (b *cartBackend) UpdateCartQuantity(context.Context, int64, int) (*domain.CartLine, error) {
	return nil, errors.New("unused")
}
func (b *cartBackend) RemoveCartLine(context.Context, int64) error { return errors.New("unused") }
func (b *cartBackend) ClearCart(context.Context) error             { return errors.New("unused") }

type ordersBackend struct {
	calls int
	got   domain.CheckoutRequest
	err   error
}

func (o *ordersBackend) Checkout(_ context.Context, req domain.CheckoutRequest) (*domain.Order, error) {
	o.calls++
	o.got = req
	if o.err != nil {
		return nil, o.err
	}
	return &domain.Order{ID: 42, Status: domain.OrderStatus("PENDING"), Total: decimal.RequireFromString("27.50")}, nil
}

func validForm() Form {
	return Form{ShippingAddress: "1 Main St", SameAsShipping: true, PaymentMethod: "PayPal"}
}

func oneLine() []domain.CartLine {
	p := decimal.NewFromInt(10)
	return []domain.CartLine{{ID: 1, Product: domain.CartProduct{ID: 1, Price: p}, Quantity: 1, Subtotal: p}}
}

func TestCheckout_EmptyCartIssuesNoRequests(t *testing.T) {
	ctx := context.Background()
	cb := &cartBackend{}
	c := cart.NewController(cb, nil)
	require.NoError(t, c.Load(ctx))
	orders := &ordersBackend{}
	ctrl := NewController("s1", orders, c, nil, nil)

	outcome, err := ctrl.Submit(ctx, validForm())
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected))
	assert.Equal(t, 1, cb.getCalls, "only the initial load")
	assert.Zero(t, orders.calls)
}

func TestCheckout_SuccessInvalidatesCartAndNavigates(t *testing.T) {
	ctx := context.Background()
	cb := &cartBackend{lines: oneLine()}
	c := cart.NewController(cb, nil)
	require.NoError(t, c.Load(ctx))
	orders := &ordersBackend{}
	dispatcher := events.NewInMemoryDispatcher()
	var placed []events.Event
	dispatcher.Subscribe(events.EventOrderPlaced, func(_ context.Context, e events.Event) error {
		placed = append(placed, e)
		return nil
	})
	ctrl := NewController("s1", orders, c, dispatcher, nil)

	outcome, err := ctrl.Submit(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, OrdersPath, outcome.NavigateTo)
	assert.EqualValues(t, 42, outcome.Order.ID)
	assert.Equal(t, domain.CheckoutRequest{ShippingAddress: "1 Main St", BillingAddress: "1 Main St", PaymentMethod: "PayPal"}, orders.got)

	assert.False(t, c.Loaded())
	assert.Equal(t, 1, cb.getCalls, "cart is not cleared or refetched by checkout")
	require.Len(t, placed, 1)
	assert.Equal(t, "s1", placed[0].SessionID)
	assert.Equal(t, NewForm(), ctrl.State().Form)
}

func TestCheckout_FailureKeepsFormAndShowsServerMessage(t *testing.T) {
	ctx := context.Background()
	c := cart.NewController(&cartBackend{lines: oneLine()}, nil)
	require.NoError(t, c.Load(ctx))
	orders := &ordersBackend{err: &backend.RemoteError{Status: 400, Message: "Insufficient balance"}}
	ctrl := NewController("s1", orders, c, nil, nil)
	form := Form{ShippingAddress: "1 Main St", BillingAddress: "2 Side St", PaymentMethod: "Debit Card"}

	_, err := ctrl.Submit(ctx, form)
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", apperrors.UserMessage(err))

	state := ctrl.State()
	assert.Equal(t, form, state.Form)
	assert.Equal(t, "Insufficient balance", state.Message)
	assert.False(t, state.Submitting)
	assert.True(t, c.Loaded(), "cart is kept on failure")
	assert.Equal(t, "2 Side St", orders.got.BillingAddress)

	orders.err = errors.New("dial tcp: connection refused")
	_, err = ctrl.Submit(ctx, form)
	assert.Equal(t, checkoutFailedMessage, apperrors.UserMessage(err))
	assert.Equal(t, 2, orders.calls)
}

func TestCheckout_InvalidFormIsRejectedLocally(t *testing.T) {
	ctx := context.Background()
	c := cart.NewController(&cartBackend{lines: oneLine()}, nil)
	require.NoError(t, c.Load(ctx))
	orders := &ordersBackend{}
	ctrl := NewController("s1", orders, c, nil, nil)

	cases := []Form{
		{SameAsShipping: true, PaymentMethod: "PayPal"},
		{ShippingAddress: "1 Main St", SameAsShipping: false, PaymentMethod: "PayPal"},
		{ShippingAddress: "1 Main St", SameAsShipping: true, PaymentMethod: "Cash"},
	}
	for _, f := range cases {
		_, err := ctrl.Submit(ctx, f)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected))
	}
	assert.Zero(t, orders.calls)
}
