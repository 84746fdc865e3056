package redis

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/provision"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHoldBackend(t *testing.T) (*HoldBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHoldBackend(client), mr
}

func TestHoldBackend_GetSetDelete(t *testing.T) {
	backend, mr := setupHoldBackend(t)
	ctx := context.Background()

	val, found, err := backend.Get(ctx, "provision_hold_c1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	require.NoError(t, backend.Set(ctx, "provision_hold_c1", `{"customer_id":"c1"}`))
	val, found, err = backend.Get(ctx, "provision_hold_c1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"customer_id":"c1"}`, val)
	assert.Zero(t, mr.TTL("provision_hold_c1"))

	require.NoError(t, backend.Delete(ctx, "provision_hold_c1"))
	require.NoError(t, backend.Delete(ctx, "provision_hold_c1"))
	_, found, err = backend.Get(ctx, "provision_hold_c1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHoldBackend_KeysScansEveryPage(t *testing.T) {
	backend, mr := setupHoldBackend(t)
	ctx := context.Background()

	// More keys than one SCAN page of 100.
	var want []string
	for i := 0; i < 250; i++ {
		key := fmt.Sprintf("provision_hold_c%03d", i)
		require.NoError(t, mr.Set(key, "{}"))
		want = append(want, key)
	}
	require.NoError(t, mr.Set("refresh_token_x", "other"))

	keys, err := backend.Keys(ctx, "provision_hold_")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, want, keys)
}

func TestHoldBackend_Unavailable(t *testing.T) {
	backend, mr := setupHoldBackend(t)
	mr.Close()

	_, _, err := backend.Get(context.Background(), "provision_hold_c1")
	assert.Error(t, err)
	_, err = backend.Keys(context.Background(), "provision_hold_")
	assert.Error(t, err)
}

func TestHoldBackend_WithHoldStore(t *testing.T) {
	backend, _ := setupHoldBackend(t)
	ctx := context.Background()
	store := provision.NewHoldStore(backend, "")

	lines := []model.CartLine{{ProductID: "p1", Name: "쌀", Price: 5, Quantity: 2}}
	require.NoError(t, store.Save(ctx, "c1", lines))

	got, found, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, lines, got)

	removed, err := store.Sweep(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	has, err := store.Has(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, has)
}
