package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// API is the slice of the backend the cart controller drives.
type API interface {
	GetCart(ctx context.Context) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (*domain.CartLine, error)
	UpdateCartQuantity(ctx context.Context, lineID int64, quantity int) (*domain.CartLine, error)
	RemoveCartLine(ctx context.Context, lineID int64) error
	ClearCart(ctx context.Context) error
}

// View is what the cart page renders.
type View struct {
	Lines     []domain.CartLine    `json:"lines"`
	Aggregate domain.CartAggregate `json:"-"`
	InFlight  []string             `json:"inFlight"`
}

// Controller owns the cached cart of one session. The cache is only ever
// replaced by a full fetch; a failed mutation leaves it untouched.
type Controller struct {
	api    API
	logger *zap.Logger

	mu       sync.Mutex
	lines    []domain.CartLine
	loaded   bool
	issued   uint64
	applied  uint64
	inFlight map[string]struct{}
}

// NewController creates a controller with an empty, unloaded cache.
func NewController(api API, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{api: api, logger: logger, inFlight: make(map[string]struct{})}
}

// Load fetches the cart unless it is already cached.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refetch(ctx)
}

// Refetch replaces the cache with the server's cart. When fetches overlap,
// the one issued last wins and earlier completions are dropped.
func (c *Controller) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	lines, err := c.api.GetCart(ctx)
	if err != nil {
		c.logger.Warn("cart fetch failed", zap.Error(err))
		return remoteFailure(err, "Failed to load cart")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		c.logger.Debug("dropping stale cart fetch", zap.Uint64("seq", seq))
		return nil
	}
	c.lines = lines
	c.loaded = true
	c.applied = seq
	return nil
}

// AddLine adds quantity units of a product, then refetches.
func (c *Controller) AddLine(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity must be at least 1", map[string]any{"quantity": quantity})
	}
	return c.mutate(ctx, fmt.Sprintf("add:%d", productID), "Failed to add item to cart", func(ctx context.Context) error {
		_, err := c.api.AddToCart(ctx, productID, quantity)
		return err
	})
}

// SetQuantity changes a line's quantity. Quantities below 1 are rejected
// without contacting the backend.
func (c *Controller) SetQuantity(ctx context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity must be at least 1", map[string]any{"lineId": lineID, "quantity": quantity})
	}
	return c.mutate(ctx, fmt.Sprintf("quantity:%d", lineID), "Failed to update quantity", func(ctx context.Context) error {
		_, err := c.api.UpdateCartQuantity(ctx, lineID, quantity)
		return err
	})
}

func (c *Controller) RemoveLine(ctx context.Context, lineID int64) error {
	return c.mutate(ctx, fmt.Sprintf("remove:%d", lineID), "Failed to remove item", func(ctx context.Context) error {
		return c.api.RemoveCartLine(ctx, lineID)
	})
}

// ClearCart empties the cart. The destructive call is only issued once the
// user has confirmed.
func (c *Controller) ClearCart(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return apperrors.NewConfirmationRequired("Are you sure you want to clear your cart?")
	}
	return c.mutate(ctx, "clear", "Failed to clear cart", c.api.ClearCart)
}

// Aggregate recomputes totals from the cached lines.
func (c *Controller) Aggregate() domain.CartAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Aggregate(c.lines)
}

// Lines returns a copy of the cached lines.
func (c *Controller) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Loaded reports whether the cache holds a fetched cart.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// IsEmpty reports a loaded cart without lines.
func (c *Controller) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && len(c.lines) == 0
}

// Invalidate drops the cache after the server cleared the cart implicitly.
// Fetches issued before the call are discarded when they complete.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.loaded = false
	c.issued++
	c.applied = c.issued
}

// InFlight reports whether action is outstanding.
func (c *Controller) InFlight(action string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[action]
	return ok
}

// Snapshot returns the lines, totals and outstanding actions in one read.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	actions := make([]string, 0, len(c.inFlight))
	for a := range c.inFlight {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	return View{Lines: lines, Aggregate: domain.Aggregate(lines), InFlight: actions}
}

func (c *Controller) mutate(ctx context.Context, action, failure string, call func(context.Context) error) error {
	if !c.begin(action) {
		return apperrors.NewInFlight(action)
	}
	defer c.end(action)

	if err := call(ctx); err != nil {
		c.logger.Warn("cart mutation failed", zap.String("action", action), zap.Error(err))
		return remoteFailure(err, failure)
	}
	return c.Refetch(ctx)
}

func (c *Controller) begin(action string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[action]; busy {
		return false
	}
	c.inFlight[action] = struct{}{}
	return true
}

func (c *Controller) end(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, action)
}

// remoteFailure prefers the backend's message over the generic fallback.
func remoteFailure(err error, fallback string) error {
	msg := backend.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	return apperrors.NewRemoteFailure(msg, backend.StatusCode(err), err)
}
