package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/domain"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := NewFileStorage(path)

	_, err := storage.Load(ctx, "cli")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Save(ctx, "cli", Record{Token: "tok", Role: domain.RoleStandard}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	rec, err := NewFileStorage(path).Load(ctx, "cli")
	require.NoError(t, err)
	assert.Equal(t, Record{Token: "tok", Role: domain.RoleStandard}, rec)

	require.NoError(t, storage.Clear(ctx, "cli"))
	require.NoError(t, storage.Clear(ctx, "cli"))
	_, err = storage.Load(ctx, "cli")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path).Load(context.Background(), "cli")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSealedStorage(t *testing.T) {
	ctx := context.Background()
	var key [32]byte
	copy(key[:], "0123456789abcdef0123456789abcdef")

	inner := NewMemoryStorage()
	sealed := NewSealedStorage(inner, &key)

	require.NoError(t, sealed.Save(ctx, "s1", Record{Token: "secret-token", Role: domain.RoleAdmin}))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.Token, sealedPrefixV1))
	assert.NotContains(t, raw.Token, "secret-token")
	assert.Equal(t, domain.RoleAdmin, raw.Role)

	rec, err := sealed.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", rec.Token)

	var other [32]byte
	_, err = NewSealedStorage(inner, &other).Load(ctx, "s1")
	assert.Error(t, err)

	require.NoError(t, inner.Save(ctx, "plain", Record{Token: "unsealed"}))
	_, err = sealed.Load(ctx, "plain")
	assert.Error(t, err)
}

func TestSealedStorage_NilKeyPassesThrough(t *testing.T) {
	inner := NewMemoryStorage()
	assert.Same(t, inner, NewSealedStorage(inner, nil))
}

func TestStore_HydrateDiscardsUnsealableRecord(t *testing.T) {
	ctx := context.Background()
	var key [32]byte
	inner := NewMemoryStorage()
	require.NoError(t, inner.Save(ctx, "s1", Record{Token: "tampered"}))

	store := NewStore("s1", NewSealedStorage(inner, &key), nil)
	require.NoError(t, store.Hydrate(ctx))
	assert.False(t, store.Snapshot().Authenticated())

	_, err := inner.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
