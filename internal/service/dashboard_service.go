package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/market-portal/internal/domain"
)

// AccountsAPI reads the current user's accounts and ledger.
type AccountsAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	MyTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// DashboardView is the account overview.
type DashboardView struct {
	User         *domain.User         `json:"user"`
	Transactions []domain.Transaction `json:"transactions"`
}

// DashboardService keeps the last account overview of one session.
// Balances are never adjusted locally; Refresh always re-reads them.
type DashboardService struct {
	api    AccountsAPI
	logger *zap.Logger

	mu   sync.Mutex
	view *DashboardView
}

// NewDashboardService creates the service.
func NewDashboardService(api AccountsAPI, logger *zap.Logger) *DashboardService {
	return &DashboardService{api: api, logger: logger}
}

// Load returns the cached overview, fetching it on first use.
func (s *DashboardService) Load(ctx context.Context) (*DashboardView, error) {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()
	if view != nil {
		return view, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the user and transactions concurrently.
func (s *DashboardService) Refresh(ctx context.Context) (*DashboardView, error) {
	var (
		user *domain.User
		txs  []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.api.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.api.MyTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard refresh failed", zap.Error(err))
		return nil, remoteFailure(err, "Failed to load account information")
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}

	view := &DashboardView{User: user, Transactions: txs}
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	return view, nil
}

// Invalidate drops the cached overview.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
}
