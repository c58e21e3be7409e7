package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

type fakeAPI struct {
	mu        sync.Mutex
	server    []domain.CartLine
	calls     []string
	failWith  error
	fetchGate chan struct{}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) GetCart(context.Context) ([]domain.CartLine, error) {
	f.record("get")
	f.mu.Lock()
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CartLine, len(f.server))
	copy(out, f.server)
	return out, nil
}

func (f *fakeAPI) AddToCart(_ context.Context, productID int64, quantity int) (*domain.CartLine, error) {
	f.record("add")
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := line(int64(len(f.server)+1), productID, "10", quantity)
	f.server = append(f.server, l)
	return &l, nil
}

func (f *fakeAPI) UpdateCartQuantity(_ context.Context, lineID int64, quantity int) (*domain.CartLine, error) {
	f.record("update")
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.server {
		if f.server[i].ID == lineID {
			f.server[i].Quantity = quantity
			f.server[i].Subtotal = f.server[i].Product.Price.Mul(decimal.NewFromInt(int64(quantity)))
			return &f.server[i], nil
		}
	}
	return nil, &backend.RemoteError{Status: 404, Message: "Cart item not found"}
}

func (f *fakeAPI) RemoveCartLine(_ context.Context, lineID int64) error {
	f.record("remove")
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.server[:0]
	for _, l := range f.server {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	f.server = kept
	return nil
}

func (f *fakeAPI) ClearCart(context.Context) error {
	f.record("clear")
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.server = nil
	return nil
}

func line(id, productID int64, price string, qty int) domain.CartLine {
	p := decimal.RequireFromString(price)
	return domain.CartLine{
		ID:       id,
		Product:  domain.CartProduct{ID: productID, Name: "p", Price: p},
		Quantity: qty,
		Subtotal: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestController_AggregateOfLoadedCart(t *testing.T) {
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 2), line(2, 2, "5", 1)}}
	c := NewController(api, nil)

	require.NoError(t, c.Load(context.Background()))
	agg := c.Aggregate()
	assert.Equal(t, "25.00", domain.FormatMoney(agg.Subtotal))
	assert.Equal(t, "2.50", domain.FormatMoney(agg.Tax))
	assert.Equal(t, "27.50", domain.FormatMoney(agg.Total))
}

func TestController_SetQuantityBelowOneIsLocal(t *testing.T) {
	api := &fakeAPI{server: []domain.CartLine{line(3, 1, "10", 2)}}
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Lines()
	calls := api.callCount()

	for _, q := range []int{0, -1} {
		err := c.SetQuantity(ctx, 3, q)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected))
	}

	assert.Equal(t, calls, api.callCount())
	assert.Equal(t, before, c.Lines())
}

func TestController_MutationReplacesCacheWithServerCart(t *testing.T) {
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 1)}}
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.SetQuantity(ctx, 1, 4))
	assert.Equal(t, api.server, c.Lines())

	require.NoError(t, c.AddLine(ctx, 7, 1))
	assert.Equal(t, api.server, c.Lines())
	assert.Len(t, c.Lines(), 2)

	require.NoError(t, c.RemoveLine(ctx, 1))
	assert.Equal(t, api.server, c.Lines())
}

func TestController_FailedMutationKeepsCacheAndSkipsRefetch(t *testing.T) {
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 1)}}
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Lines()

	api.failWith = &backend.RemoteError{Status: 400, Message: "Out of stock"}
	err := c.SetQuantity(ctx, 1, 9)
	require.Error(t, err)
	assert.Equal(t, "Out of stock", apperrors.UserMessage(err))

	assert.Equal(t, []string{"get", "update"}, api.calls)
	assert.Equal(t, before, c.Lines())

	api.failWith = errors.New("connection refused")
	err = c.RemoveLine(ctx, 1)
	assert.Equal(t, "Failed to remove item", apperrors.UserMessage(err))
}

func TestController_ClearRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 1)}}
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	err := c.ClearCart(ctx, false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfirmationRequired))
	assert.Equal(t, 1, api.callCount())

	require.NoError(t, c.ClearCart(ctx, true))
	assert.True(t, c.IsEmpty())
}

func TestController_AddRejectsZeroQuantity(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, nil)
	err := c.AddLine(context.Background(), 1, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected))
	assert.Zero(t, api.callCount())
}

func TestController_DuplicateActionIsInFlight(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 1)}}
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	api.mu.Lock()
	api.fetchGate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.SetQuantity(ctx, 1, 2) }()
	require.Eventually(t, func() bool { return c.InFlight("quantity:1") }, timeout, tick)

	err := c.SetQuantity(ctx, 1, 3)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInFlight))

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, c.InFlight("quantity:1"))
}

func TestController_InvalidateDropsEarlierFetch(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{server: []domain.CartLine{line(1, 1, "10", 1)}, fetchGate: gate}
	c := NewController(api, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Refetch(ctx) }()
	require.Eventually(t, func() bool { return api.callCount() == 1 }, timeout, tick)

	c.Invalidate()
	close(gate)
	require.NoError(t, <-done)

	assert.False(t, c.Loaded())
	assert.Empty(t, c.Lines())
}
