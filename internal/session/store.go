package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// RoleResolver looks up the role bound to a token.
type RoleResolver interface {
	ResolveRole(ctx context.Context, token string) (domain.Role, error)
}

// ExpiryReader reports when a token expires. ok is false for tokens without an expiry.
type ExpiryReader interface {
	ExpiresAt(token string) (time.Time, bool)
}

// InvalidationHook observes sessions destroyed by a failed lookup or an expired token.
type InvalidationHook func(key string, cause error)

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithAutoResolve starts role resolution in the background after Login and Hydrate.
func WithAutoResolve(enabled bool) Option {
	return func(s *Store) { s.autoResolve = enabled }
}

func WithExpiryReader(r ExpiryReader) Option {
	return func(s *Store) { s.expiry = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithInvalidationHook(h InvalidationHook) Option {
	return func(s *Store) { s.onInvalidate = h }
}

// Store is the single owner of one session's token and role.
// Every mutation writes memory and storage under the same lock so readers
// never observe a token paired with another token's role.
type Store struct {
	key      string
	storage  Storage
	resolver RoleResolver

	mu    sync.RWMutex
	token string
	role  domain.RoleState

	group        singleflight.Group
	logger       *zap.Logger
	autoResolve  bool
	expiry       ExpiryReader
	now          func() time.Time
	onInvalidate InvalidationHook
}

// NewStore creates an empty store mirrored under key.
func NewStore(key string, storage Storage, resolver RoleResolver, opts ...Option) *Store {
	s := &Store{
		key:      key,
		storage:  storage,
		resolver: resolver,
		role:     domain.UnresolvedRole(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of the session.
func (s *Store) Key() string { return s.key }

// Hydrate restores the session from storage. Unreadable records and expired
// tokens are cleared so the session starts logged out.
func (s *Store) Hydrate(ctx context.Context) error {
	rec, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("discarding unreadable session record", zap.String("session", s.key), zap.Error(err))
		return s.Logout(ctx)
	}
	if rec.Token == "" {
		return s.Logout(ctx)
	}
	if s.expired(rec.Token) {
		s.logger.Info("stored token expired", zap.String("session", s.key))
		if err := s.Logout(ctx); err != nil {
			return err
		}
		s.notifyInvalidated(apperrors.NewSessionInvalid("session expired", nil))
		return nil
	}

	state := domain.UnresolvedRole()
	if rec.Role != domain.RoleUnset {
		role, err := domain.ParseRole(string(rec.Role))
		if err == nil {
			state = domain.ResolvedRole(role)
		}
	}

	s.mu.Lock()
	s.token = rec.Token
	s.role = state
	s.mu.Unlock()

	if state.Status == domain.RoleUnresolved {
		s.startResolve(ctx)
	}
	return nil
}

// Login replaces the session with token. The role becomes unresolved and
// is looked up again for the new token.
func (s *Store) Login(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.NewValidationError("token is required", nil)
	}

	s.mu.Lock()
	if err := s.storage.Save(ctx, s.key, Record{Token: token}); err != nil {
		s.mu.Unlock()
		return apperrors.NewInternalError(err)
	}
	s.token = token
	s.role = domain.UnresolvedRole()
	s.mu.Unlock()

	s.logger.Info("session logged in", zap.String("session", s.key))
	s.startResolve(ctx)
	return nil
}

// Logout clears the session. Calling it on an empty session is a no-op apart
// from clearing storage again.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx, domain.UnresolvedRole())
}

func (s *Store) clearLocked(ctx context.Context, role domain.RoleState) error {
	s.token = ""
	s.role = role
	if err := s.storage.Clear(ctx, s.key); err != nil {
		s.logger.Error("failed to clear session storage", zap.String("session", s.key), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ResolveRole looks up the role for the current token. Concurrent callers for
// the same token share one lookup. A failed lookup destroys the session, unless
// the token changed while the lookup was running, in which case the result is
// discarded.
func (s *Store) ResolveRole(ctx context.Context) (domain.RoleState, error) {
	s.mu.RLock()
	token, state := s.token, s.role
	s.mu.RUnlock()

	if token == "" || state.Status != domain.RoleUnresolved {
		return state, nil
	}
	if s.resolver == nil {
		return state, nil
	}

	v, err, _ := s.group.Do(token, func() (any, error) {
		s.mu.RLock()
		current := s.role
		same := s.token == token
		s.mu.RUnlock()
		if same && current.Status == domain.RoleResolved {
			return current.Role, nil
		}
		return s.resolver.ResolveRole(ctx, token)
	})

	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		s.logger.Debug("discarding role for superseded token", zap.String("session", s.key))
		return s.Snapshot().Role, nil
	}
	if s.role.Status != domain.RoleUnresolved {
		state := s.role
		s.mu.Unlock()
		return state, nil
	}

	if err != nil {
		_ = s.clearLocked(ctx, domain.InvalidRole())
		s.mu.Unlock()
		s.logger.Warn("role lookup failed, logging out", zap.String("session", s.key), zap.Error(err))
		cause := apperrors.NewSessionInvalid("session is no longer valid", err)
		s.notifyInvalidated(cause)
		return domain.InvalidRole(), cause
	}

	role := v.(domain.Role)
	if saveErr := s.storage.Save(ctx, s.key, Record{Token: token, Role: role}); saveErr != nil {
		s.logger.Error("failed to persist resolved role", zap.String("session", s.key), zap.Error(saveErr))
	}
	s.role = domain.ResolvedRole(role)
	state = s.role
	s.mu.Unlock()

	s.logger.Info("role resolved", zap.String("session", s.key), zap.String("role", string(role)))
	return state, nil
}

// Current returns the session after dropping an expired token.
func (s *Store) Current(ctx context.Context) domain.Session {
	snap := s.Snapshot()
	if snap.Token != "" && s.expired(snap.Token) {
		s.mu.Lock()
		if s.token == snap.Token {
			_ = s.clearLocked(ctx, domain.UnresolvedRole())
		}
		s.mu.Unlock()
		s.notifyInvalidated(apperrors.NewSessionInvalid("session expired", nil))
		return s.Snapshot()
	}
	return snap
}

// Snapshot returns the token and role as one consistent pair.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{Token: s.token, Role: s.role}
}

// Token returns the bearer token for outbound calls.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// IsPrivileged is true only when the role is resolved to ADMIN.
func (s *Store) IsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.role.IsPrivileged()
}

func (s *Store) startResolve(ctx context.Context) {
	if !s.autoResolve || s.resolver == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		_, _ = s.ResolveRole(bg)
	}()
}

func (s *Store) expired(token string) bool {
	if s.expiry == nil {
		return false
	}
	exp, ok := s.expiry.ExpiresAt(token)
	return ok && !s.now().Before(exp)
}

func (s *Store) notifyInvalidated(cause error) {
	if s.onInvalidate != nil {
		s.onInvalidate(s.key, cause)
	}
}
