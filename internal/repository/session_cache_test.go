package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/persistence"
	"github.com/spec-kit/market-portal/internal/session"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionCache(&persistence.Redis{Client: client, Prefix: "market:session:"}, ttl), mr
}

func TestRedisSessionCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Hour)

	_, err := cache.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, cache.Save(ctx, "abc", session.Record{Token: "tok", Role: domain.RoleAdmin}))
	assert.True(t, mr.Exists("market:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("market:session:abc"))

	rec, err := cache.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session.Record{Token: "tok", Role: domain.RoleAdmin}, rec)

	require.NoError(t, cache.Clear(ctx, "abc"))
	require.NoError(t, cache.Clear(ctx, "abc"))
	_, err = cache.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisSessionCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, cache.Save(ctx, "abc", session.Record{Token: "tok"}))

	mr.FastForward(2 * time.Minute)
	_, err := cache.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisSessionCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, 0)
	require.NoError(t, mr.Set("market:session:abc", "not-json"))

	_, err := cache.Load(ctx, "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

func TestRedisSessionCache_BacksStore(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, 0)

	store := session.NewStore("abc", cache, nil)
	require.NoError(t, store.Login(ctx, "tok"))

	reloaded := session.NewStore("abc", cache, nil)
	require.NoError(t, reloaded.Hydrate(ctx))
	assert.True(t, reloaded.Snapshot().RolePending())
}
