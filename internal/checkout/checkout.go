package checkout

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/events"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

const (
	// OrdersPath is where a successful checkout navigates.
	OrdersPath = "/orders"

	checkoutFailedMessage = "Failed to place order. Please try again."
	emptyCartMessage      = "Your cart is empty"
)

// OrdersAPI submits the checkout commit.
type OrdersAPI interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Order, error)
}

// Cart is the cached cart the checkout reads and invalidates.
type Cart interface {
	Load(ctx context.Context) error
	IsEmpty() bool
	Invalidate()
}

// Form is the checkout form as the user filled it in.
type Form struct {
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
	SameAsShipping  bool   `json:"sameAsShipping"`
	PaymentMethod   string `json:"paymentMethod"`
}

// NewForm returns the form as first shown.
func NewForm() Form {
	return Form{SameAsShipping: true, PaymentMethod: domain.DefaultPaymentMethod}
}

// Request builds the commit request, defaulting billing to shipping.
func (f Form) Request() domain.CheckoutRequest {
	billing := f.BillingAddress
	if f.SameAsShipping {
		billing = f.ShippingAddress
	}
	return domain.CheckoutRequest{
		ShippingAddress: strings.TrimSpace(f.ShippingAddress),
		BillingAddress:  strings.TrimSpace(billing),
		PaymentMethod:   f.PaymentMethod,
	}
}

// Validate checks the form without contacting the backend.
func (f Form) Validate() error {
	details := map[string]any{}
	req := f.Request()
	if req.ShippingAddress == "" {
		details["shippingAddress"] = "required"
	}
	if req.BillingAddress == "" {
		details["billingAddress"] = "required"
	}
	if !validPaymentMethod(req.PaymentMethod) {
		details["paymentMethod"] = "unsupported"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("checkout form is incomplete", details)
	}
	return nil
}

func validPaymentMethod(m string) bool {
	for _, pm := range domain.PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Outcome is a placed order and the page to show next.
type Outcome struct {
	Order      *domain.Order
	NavigateTo string
}

// State is what the checkout page renders.
type State struct {
	Form       Form   `json:"form"`
	Message    string `json:"message,omitempty"`
	Submitting bool   `json:"submitting"`
}

// Controller runs the checkout commit for one session.
type Controller struct {
	sessionID  string
	api        OrdersAPI
	cart       Cart
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu         sync.Mutex
	form       Form
	message    string
	submitting bool
}

// NewController creates a checkout controller.
func NewController(sessionID string, api OrdersAPI, cart Cart, dispatcher events.Dispatcher, logger *zap.Logger) *Controller {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sessionID:  sessionID,
		api:        api,
		cart:       cart,
		dispatcher: dispatcher,
		logger:     logger,
		form:       NewForm(),
	}
}

// State returns the form and last message.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Form: c.form, Message: c.message, Submitting: c.submitting}
}

// Submit places the order. An empty cart or an invalid form is rejected
// before any commit is sent. A failure keeps the form as submitted.
func (c *Controller) Submit(ctx context.Context, form Form) (*Outcome, error) {
	if !c.begin(form) {
		return nil, apperrors.NewInFlight("checkout")
	}
	defer c.end()

	if c.cart.IsEmpty() {
		return nil, c.fail(apperrors.NewValidationError(emptyCartMessage, nil))
	}
	if err := form.Validate(); err != nil {
		return nil, c.fail(err)
	}
	if err := c.cart.Load(ctx); err != nil {
		return nil, c.fail(err)
	}
	if c.cart.IsEmpty() {
		return nil, c.fail(apperrors.NewValidationError(emptyCartMessage, nil))
	}

	order, err := c.api.Checkout(ctx, form.Request())
	if err != nil {
		c.logger.Warn("checkout failed", zap.String("session", c.sessionID), zap.Error(err))
		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = checkoutFailedMessage
		}
		return nil, c.fail(apperrors.NewRemoteFailure(msg, backend.StatusCode(err), err))
	}

	// the backend empties the cart as part of the commit
	c.cart.Invalidate()

	c.mu.Lock()
	c.form = NewForm()
	c.message = ""
	c.mu.Unlock()

	c.logger.Info("order placed", zap.String("session", c.sessionID), zap.Int64("order_id", order.ID))
	if err := c.dispatcher.Publish(ctx, events.New(events.EventOrderPlaced, c.sessionID, events.OrderPlacedPayload{
		OrderID:       order.ID,
		Total:         order.Total,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Lines:         len(order.Lines),
	})); err != nil {
		c.logger.Warn("order event handlers failed", zap.Error(err))
	}

	return &Outcome{Order: order, NavigateTo: OrdersPath}, nil
}

// Reset drops the retained form and message. An outstanding submit keeps its
// in-flight flag.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = NewForm()
	c.message = ""
}

func (c *Controller) begin(form Form) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return false
	}
	c.submitting = true
	c.form = form
	c.message = ""
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = apperrors.UserMessage(err)
	return err
}
