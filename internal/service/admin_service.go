package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// AdminAPI is the privileged backend surface.
type AdminAPI interface {
	AllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error)
}

// AdminService runs the privileged administration calls. The backend makes
// the authorization decision; the portal only gates navigation.
type AdminService struct {
	api    AdminAPI
	logger *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(api AdminAPI, logger *zap.Logger) *AdminService {
	return &AdminService{api: api, logger: logger}
}

func (s *AdminService) All(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.api.AllOrders(ctx)
	if err != nil {
		return nil, remoteFailure(err, "Failed to load orders")
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// UpdateStatus forwards a status change. The returned order is authoritative.
func (s *AdminService) UpdateStatus(ctx context.Context, id int64, rawStatus string) (*domain.Order, error) {
	status, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": rawStatus})
	}
	order, err := s.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, remoteFailure(err, "Failed to update order status")
	}
	s.logger.Info("order status updated", zap.Int64("order_id", id), zap.String("status", string(status)))
	return order, nil
}

// NewUserForm is the raw privileged create-user form.
type NewUserForm struct {
	Name           string
	Email          string
	Password       string
	AccountNumber  string
	InitialBalance string
}

func (s *AdminService) CreateUser(ctx context.Context, form NewUserForm) (*domain.User, error) {
	details := map[string]any{}
	if strings.TrimSpace(form.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(form.Email) == "" {
		details["email"] = "required"
	}
	if form.Password == "" {
		details["password"] = "required"
	}
	account, err := domain.ParseAccountNumber(form.AccountNumber)
	if err != nil {
		details["accountNumber"] = err.Error()
	}
	balance, err := parseAmount(form.InitialBalance, true)
	if err != nil {
		details["initialBalance"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("user form is invalid", details)
	}

	user, err := s.api.CreateUser(ctx, domain.NewUser{
		Name:           strings.TrimSpace(form.Name),
		Email:          strings.TrimSpace(form.Email),
		Password:       form.Password,
		AccountNumber:  account,
		InitialBalance: balance,
	})
	if err != nil {
		return nil, remoteFailure(err, "Failed to create user")
	}
	return user, nil
}
