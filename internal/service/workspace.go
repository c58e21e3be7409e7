package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/cart"
	"github.com/spec-kit/market-portal/internal/checkout"
	"github.com/spec-kit/market-portal/internal/events"
	"github.com/spec-kit/market-portal/internal/session"
)

// WorkspaceDeps are shared by every workspace.
type WorkspaceDeps struct {
	Client      *backend.Client
	Storage     session.Storage
	Expiry      session.ExpiryReader
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	AutoResolve bool
}

// Workspace is everything one signed-in user works with: their session and
// the controllers holding their cart, checkout and transfer state.
type Workspace struct {
	ID        string
	Session   *session.Store
	Cart      *cart.Controller
	Checkout  *checkout.Controller
	Transfer  *checkout.TransferController
	Dashboard *DashboardService
	Catalog   *CatalogService
	Orders    *OrderService
	Admin     *AdminService
}

// NewWorkspace builds a workspace for id and hydrates its session from storage.
func NewWorkspace(ctx context.Context, id string, deps WorkspaceDeps) (*Workspace, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	logger = logger.With(zap.String("session", id))

	ws := &Workspace{ID: id}
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithAutoResolve(deps.AutoResolve),
		session.WithInvalidationHook(func(key string, cause error) {
			ws.Reset()
			reason := "invalid"
			if cause != nil {
				reason = cause.Error()
			}
			if err := dispatcher.Publish(context.Background(), events.New(events.EventSessionInvalidated, key,
				events.SessionInvalidatedPayload{Reason: reason})); err != nil {
				logger.Warn("invalidation event handlers failed", zap.Error(err))
			}
		}),
	}
	if deps.Expiry != nil {
		opts = append(opts, session.WithExpiryReader(deps.Expiry))
	}
	ws.Session = session.NewStore(id, deps.Storage, deps.Client, opts...)

	client := deps.Client.WithTokenSource(ws.Session)
	ws.Cart = cart.NewController(client, logger)
	ws.Checkout = checkout.NewController(id, client, ws.Cart, dispatcher, logger)
	ws.Dashboard = NewDashboardService(client, logger)
	ws.Transfer = checkout.NewTransferController(id, client, func(ctx context.Context) {
		ws.Dashboard.Invalidate()
		if _, err := ws.Dashboard.Refresh(ctx); err != nil {
			logger.Warn("post-transfer refresh failed", zap.Error(err))
		}
	}, dispatcher, logger)
	ws.Catalog = NewCatalogService(client, logger)
	ws.Orders = NewOrderService(client, logger)
	ws.Admin = NewAdminService(client, logger)

	if err := ws.Session.Hydrate(ctx); err != nil {
		return nil, err
	}
	return ws, nil
}

// Logout clears the session and every cached view.
func (w *Workspace) Logout(ctx context.Context) error {
	w.Reset()
	return w.Session.Logout(ctx)
}

// Reset drops every view held for the previous user: cached cart and
// dashboard, and the retained checkout and transfer forms.
func (w *Workspace) Reset() {
	if w.Cart != nil {
		w.Cart.Invalidate()
	}
	if w.Dashboard != nil {
		w.Dashboard.Invalidate()
	}
	if w.Checkout != nil {
		w.Checkout.Reset()
	}
	if w.Transfer != nil {
		w.Transfer.Reset()
	}
}

type workspaceEntry struct {
	ws       *Workspace
	lastSeen time.Time
}

// Manager keeps one workspace per browser session.
type Manager struct {
	deps WorkspaceDeps
	now  func() time.Time

	// creation hydrates from storage, so it runs outside mu, once per id
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*workspaceEntry
}

// NewManager creates an empty registry.
func NewManager(deps WorkspaceDeps) *Manager {
	return &Manager{deps: deps, now: time.Now, entries: make(map[string]*workspaceEntry)}
}

// Workspace returns the workspace for id, creating and hydrating it on first use.
func (m *Manager) Workspace(ctx context.Context, id string) (*Workspace, error) {
	if ws, ok := m.lookup(id); ok {
		return ws, nil
	}
	v, err, _ := m.group.Do(id, func() (any, error) {
		if ws, ok := m.lookup(id); ok {
			return ws, nil
		}
		ws, err := NewWorkspace(ctx, id, m.deps)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.entries[id] = &workspaceEntry{ws: ws, lastSeen: m.now()}
		m.mu.Unlock()
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (m *Manager) lookup(id string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = m.now()
	return entry.ws, true
}

// Open returns the session store of the workspace for id.
func (m *Manager) Open(ctx context.Context, id string) (*session.Store, error) {
	ws, err := m.Workspace(ctx, id)
	if err != nil {
		return nil, err
	}
	return ws.Session, nil
}

// Sweep forgets workspaces idle for longer than idle. Their durable session
// records stay, so a returning browser is hydrated again.
func (m *Manager) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	removed := 0
	for id, entry := range m.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
