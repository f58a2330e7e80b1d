package console_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/console-client/pkg/console"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(10)
	ctx := context.Background()

	err := store.Set(ctx, "providers", "providers/types", []byte("payload"))
	require.NoError(t, err)

	data, err := store.Get(ctx, "providers", "providers/types")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestMemoryStore_GetMiss(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(10)

	_, err := store.Get(context.Background(), "providers", "nope")
	require.ErrorIs(t, err, console.ErrCacheMiss)
}

func TestMemoryStore_NamespacesAreIsolated(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "providers", "types", []byte("a")))

	_, err := store.Get(ctx, "networks", "types")
	require.ErrorIs(t, err, console.ErrCacheMiss)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "providers", "types", []byte("a")))
	require.NoError(t, store.Delete(ctx, "providers", "types"))

	_, err := store.Get(ctx, "providers", "types")
	require.ErrorIs(t, err, console.ErrCacheMiss)
}

func TestMemoryStore_ClearNamespace(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "providers", "types", []byte("a")))
	require.NoError(t, store.Set(ctx, "networks", "types", []byte("b")))

	require.NoError(t, store.Clear(ctx, "providers"))

	_, err := store.Get(ctx, "providers", "types")
	require.ErrorIs(t, err, console.ErrCacheMiss)

	data, err := store.Get(ctx, "networks", "types")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestMemoryStore_OverflowDropsNamespace(t *testing.T) {
	t.Parallel()

	store := console.NewMemoryStore(2)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, store.Set(ctx, "providers", fmt.Sprintf("key-%d", i), []byte("v")))
	}

	// The overflowing write survives; earlier entries may be gone.
	data, err := store.Get(ctx, "providers", "key-2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestNoOpStore_AlwaysDisabled(t *testing.T) {
	t.Parallel()

	store := console.NewNoOpStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "providers", "types", []byte("a")))

	_, err := store.Get(ctx, "providers", "types")
	require.ErrorIs(t, err, console.ErrCacheDisabled)

	require.NoError(t, store.Delete(ctx, "providers", "types"))
	require.NoError(t, store.Clear(ctx, ""))
}

func TestNewStoreFromConfig_Defaults(t *testing.T) {
	t.Parallel()

	store, err := console.NewStoreFromConfig(nil)
	require.NoError(t, err)
	assert.IsType(t, &console.MemoryStore{}, store)
}

func TestNewStoreFromConfig_None(t *testing.T) {
	t.Parallel()

	store, err := console.NewStoreFromConfig(&console.StoreConfig{Type: console.StoreTypeNone})
	require.NoError(t, err)
	assert.IsType(t, &console.NoOpStore{}, store)
}

func TestNewStoreFromConfig_NATSRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := console.NewStoreFromConfig(&console.StoreConfig{Type: console.StoreTypeNATS})
	require.ErrorIs(t, err, console.ErrNATSConfigRequired)
}

func TestNewStoreFromConfig_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := console.NewStoreFromConfig(&console.StoreConfig{Type: "redis"})
	require.ErrorIs(t, err, console.ErrUnsupportedStore)
}
