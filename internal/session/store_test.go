package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

type stubResolver struct {
	mu      sync.Mutex
	calls   int32
	roles   map[string]domain.Role
	errs    map[string]error
	gates   map[string]chan struct{}
	entered chan string
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		roles:   map[string]domain.Role{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 16),
	}
}

func (r *stubResolver) ResolveRole(_ context.Context, token string) (domain.Role, error) {
	atomic.AddInt32(&r.calls, 1)
	r.entered <- token
	r.mu.Lock()
	gate := r.gates[token]
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[token]; err != nil {
		return domain.RoleUnset, err
	}
	return r.roles[token], nil
}

type fixedExpiry map[string]time.Time

func (f fixedExpiry) ExpiresAt(token string) (time.Time, bool) {
	t, ok := f[token]
	return t, ok
}

type failingStorage struct{ MemoryStorage }

func (f *failingStorage) Save(context.Context, string, Record) error {
	return errors.New("disk full")
}

func TestStore_LoginThenFailedLookupLogsOut(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	resolver := newStubResolver()
	resolver.errs["tok-1"] = errors.New("401 unauthorized")

	var invalidated []string
	store := NewStore("s1", storage, resolver, WithInvalidationHook(func(key string, _ error) {
		invalidated = append(invalidated, key)
	}))

	require.NoError(t, store.Login(ctx, "tok-1"))
	assert.True(t, store.Snapshot().RolePending())

	state, err := store.ResolveRole(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSessionInvalid))
	assert.Equal(t, domain.RoleInvalid, state.Status)

	_, ok := store.Token()
	assert.False(t, ok)
	assert.False(t, store.IsPrivileged())

	_, err = storage.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"s1"}, invalidated)
}

func TestStore_ResolveAdminPersistsPair(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	resolver := newStubResolver()
	resolver.roles["tok-admin"] = domain.RoleAdmin
	store := NewStore("s1", storage, resolver)

	require.NoError(t, store.Login(ctx, "tok-admin"))
	assert.False(t, store.IsPrivileged(), "role must not be assumed before lookup")

	state, err := store.ResolveRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedRole(domain.RoleAdmin), state)
	assert.True(t, store.IsPrivileged())

	rec, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Record{Token: "tok-admin", Role: domain.RoleAdmin}, rec)

	// already resolved, no second lookup
	_, err = store.ResolveRole(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
}

func TestStore_StaleLookupIsDiscarded(t *testing.T) {
	ctx := context.Background()
	resolver := newStubResolver()
	resolver.roles["tok-a"] = domain.RoleAdmin
	resolver.roles["tok-b"] = domain.RoleStandard
	gate := make(chan struct{})
	resolver.gates["tok-a"] = gate
	store := NewStore("s1", NewMemoryStorage(), resolver)

	require.NoError(t, store.Login(ctx, "tok-a"))

	done := make(chan domain.RoleState, 1)
	go func() {
		state, _ := store.ResolveRole(ctx)
		done <- state
	}()
	assert.Equal(t, "tok-a", <-resolver.entered)

	require.NoError(t, store.Login(ctx, "tok-b"))
	close(gate)
	<-done

	snap := store.Snapshot()
	assert.Equal(t, "tok-b", snap.Token)
	assert.Equal(t, domain.RoleUnresolved, snap.Role.Status)
	assert.False(t, store.IsPrivileged())
}

func TestStore_StaleFailureDoesNotLogOutNewToken(t *testing.T) {
	ctx := context.Background()
	resolver := newStubResolver()
	resolver.errs["tok-a"] = errors.New("boom")
	gate := make(chan struct{})
	resolver.gates["tok-a"] = gate
	store := NewStore("s1", NewMemoryStorage(), resolver)

	require.NoError(t, store.Login(ctx, "tok-a"))
	done := make(chan error, 1)
	go func() {
		_, err := store.ResolveRole(ctx)
		done <- err
	}()
	<-resolver.entered

	require.NoError(t, store.Login(ctx, "tok-b"))
	close(gate)
	assert.NoError(t, <-done)

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-b", token)
}

func TestStore_ConcurrentResolveSharesOneLookup(t *testing.T) {
	ctx := context.Background()
	resolver := newStubResolver()
	resolver.roles["tok"] = domain.RoleStandard
	gate := make(chan struct{})
	resolver.gates["tok"] = gate
	store := NewStore("s1", NewMemoryStorage(), resolver)
	require.NoError(t, store.Login(ctx, "tok"))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := store.ResolveRole(ctx)
			assert.NoError(t, err)
			assert.Equal(t, domain.ResolvedRole(domain.RoleStandard), state)
		}()
	}
	<-resolver.entered
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
}

func TestStore_AutoResolveAfterLogin(t *testing.T) {
	ctx := context.Background()
	resolver := newStubResolver()
	resolver.roles["tok"] = domain.RoleAdmin
	store := NewStore("s1", NewMemoryStorage(), resolver, WithAutoResolve(true))

	require.NoError(t, store.Login(ctx, "tok"))
	assert.Eventually(t, store.IsPrivileged, time.Second, 5*time.Millisecond)
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore("s1", storage, nil)

	require.NoError(t, store.Logout(ctx))
	require.NoError(t, store.Login(ctx, "tok"))
	require.NoError(t, store.Logout(ctx))
	require.NoError(t, store.Logout(ctx))

	assert.False(t, store.Snapshot().Authenticated())
	_, err := storage.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoginKeepsSessionWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	store := NewStore("s1", &failingStorage{MemoryStorage: MemoryStorage{records: map[string]Record{}}}, nil)

	err := store.Login(ctx, "tok")
	require.Error(t, err)
	assert.False(t, store.Snapshot().Authenticated())
}

func TestStore_LoginRejectsEmptyToken(t *testing.T) {
	store := NewStore("s1", NewMemoryStorage(), nil)
	err := store.Login(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected))
}

func TestStore_Hydrate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("restores resolved pair", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, "s1", Record{Token: "tok", Role: domain.RoleAdmin}))
		store := NewStore("s1", storage, nil)

		require.NoError(t, store.Hydrate(ctx))
		assert.True(t, store.IsPrivileged())
	})

	t.Run("pending role stays unresolved", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, "s1", Record{Token: "tok"}))
		store := NewStore("s1", storage, nil)

		require.NoError(t, store.Hydrate(ctx))
		assert.True(t, store.Snapshot().RolePending())
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, "s1", Record{Token: "old", Role: domain.RoleAdmin}))
		store := NewStore("s1", storage, nil,
			WithExpiryReader(fixedExpiry{"old": now.Add(-time.Minute)}),
			WithClock(func() time.Time { return now }),
		)

		require.NoError(t, store.Hydrate(ctx))
		assert.False(t, store.Snapshot().Authenticated())
		_, err := storage.Load(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing record is a logged out session", func(t *testing.T) {
		store := NewStore("s1", NewMemoryStorage(), nil)
		require.NoError(t, store.Hydrate(ctx))
		assert.False(t, store.Snapshot().Authenticated())
	})
}

func TestStore_CurrentDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := now
	store := NewStore("s1", NewMemoryStorage(), nil,
		WithExpiryReader(fixedExpiry{"tok": now.Add(time.Minute)}),
		WithClock(func() time.Time { return clock }),
	)
	require.NoError(t, store.Login(ctx, "tok"))
	assert.True(t, store.Current(ctx).Authenticated())

	clock = now.Add(2 * time.Minute)
	assert.False(t, store.Current(ctx).Authenticated())
}
