package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/events"
	"github.com/spec-kit/market-portal/internal/session"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// AuthAPI is the backend surface used for credential exchange.
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
}

// AuthService coordinates login, registration and logout against a session store.
type AuthService struct {
	api        AuthAPI
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(api AuthAPI, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	return &AuthService{api: api, dispatcher: dispatcher, logger: logger}
}

// Login exchanges credentials for a token and installs it in store. A
// rejected login leaves any existing session untouched.
func (s *AuthService) Login(ctx context.Context, store *session.Store, email, password string) (*domain.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	resp, err := s.api.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, authFailure(err, "Login failed")
	}
	if err := s.install(ctx, store, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	AccountNumber  string
	BankName       string
	InitialBalance string
}

// Register creates an account and logs into it.
func (s *AuthService) Register(ctx context.Context, store *session.Store, in RegisterInput) (*domain.AuthResponse, error) {
	req, err := in.request()
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, authFailure(err, "Registration failed")
	}
	if err := s.install(ctx, store, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout clears the session. It never contacts the backend.
func (s *AuthService) Logout(ctx context.Context, store *session.Store) error {
	return store.Logout(ctx)
}

func (s *AuthService) install(ctx context.Context, store *session.Store, resp *domain.AuthResponse) error {
	if resp.Token == "" {
		return apperrors.NewAuthenticationFailure("Login failed", nil)
	}
	if err := store.Login(ctx, resp.Token); err != nil {
		return err
	}
	s.logger.Info("user logged in", zap.String("session", store.Key()), zap.String("email", resp.Email))
	if err := s.dispatcher.Publish(ctx, events.New(events.EventSessionLoggedIn, store.Key(), nil)); err != nil {
		s.logger.Warn("login event handlers failed", zap.Error(err))
	}
	return nil
}

func (in RegisterInput) request() (domain.RegisterRequest, error) {
	details := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(in.Email) == "" {
		details["email"] = "required"
	}
	if in.Password == "" {
		details["password"] = "required"
	}
	account, err := domain.ParseAccountNumber(in.AccountNumber)
	if err != nil {
		details["accountNumber"] = err.Error()
	}
	balance, err := parseAmount(in.InitialBalance, true)
	if err != nil {
		details["initialBalance"] = err.Error()
	}
	if len(details) > 0 {
		return domain.RegisterRequest{}, apperrors.NewValidationError("registration form is invalid", details)
	}
	return domain.RegisterRequest{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Password:       in.Password,
		AccountNumber:  account,
		BankName:       strings.TrimSpace(in.BankName),
		InitialBalance: balance,
	}, nil
}

// authFailure surfaces the backend's rejection text verbatim.
func authFailure(err error, fallback string) error {
	msg := backend.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	return apperrors.NewAuthenticationFailure(msg, err)
}

// remoteFailure converts a backend error into the message shown to the user.
func remoteFailure(err error, fallback string) error {
	msg := backend.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	return apperrors.NewRemoteFailure(msg, backend.StatusCode(err), err)
}
