package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/domain"
)

// OrdersAPI reads the caller's orders.
type OrdersAPI interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	OrderByID(ctx context.Context, id int64) (*domain.Order, error)
}

// OrderService reads the caller's order history.
type OrderService struct {
	api    OrdersAPI
	logger *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(api OrdersAPI, logger *zap.Logger) *OrderService {
	return &OrderService{api: api, logger: logger}
}

func (s *OrderService) Mine(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.api.MyOrders(ctx)
	if err != nil {
		return nil, remoteFailure(err, "Failed to load orders")
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.api.OrderByID(ctx, id)
	if err != nil {
		return nil, remoteFailure(err, "Failed to load order")
	}
	return order, nil
}
