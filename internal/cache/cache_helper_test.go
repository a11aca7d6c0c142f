package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestCacheHelperRoundTrip(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), WorkOrderCacheConfig.Prefix)

	type order struct {
		ID        uint   `json:"id"`
		OwnerName string `json:"owner_name"`
	}

	stored := order{ID: 7, OwnerName: "Dana Smith"}
	require.NoError(t, helper.Set(ctx, "id:7", stored, time.Minute))

	var got order
	require.NoError(t, helper.Get(ctx, "id:7", &got))
	assert.Equal(t, stored, got)

	exists, err := helper.Exists(ctx, "id:7")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, helper.Delete(ctx, "id:7"))
	err = helper.Get(ctx, "id:7", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperMissingKey(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), VehicleCacheConfig.Prefix)

	var dest map[string]interface{}
	err := helper.Get(ctx, "id:404", &dest)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelperNilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "")

	// Writes are silently dropped, reads report the cache as unavailable.
	assert.NoError(t, helper.Set(ctx, "id:1", "value", time.Minute))
	assert.NoError(t, helper.Delete(ctx, "id:1"))

	var dest string
	assert.ErrorIs(t, helper.Get(ctx, "id:1", &dest), ErrCacheNotAvailable)
}

func TestCacheOrExecuteFetchesOnMiss(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), RoomCacheConfig.Prefix)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]string{"name": "Work Order- 3"}, nil
	}

	var got map[string]string
	require.NoError(t, helper.CacheOrExecute(ctx, "workorder:3", &got, time.Minute, fetch))
	assert.Equal(t, "Work Order- 3", got["name"])
	assert.Equal(t, 1, calls)
}

func TestInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), ExistsCacheConfig.Prefix)

	require.NoError(t, helper.SetString(ctx, "vehicle:1", "true", time.Minute))
	require.NoError(t, helper.SetString(ctx, "vehicle:2", "true", time.Minute))
	require.NoError(t, helper.SetString(ctx, "user:1", "true", time.Minute))

	require.NoError(t, helper.InvalidatePattern(ctx, "vehicle:*"))

	_, err := helper.GetString(ctx, "vehicle:1")
	assert.ErrorIs(t, err, ErrCacheNotFound)
	_, err = helper.GetString(ctx, "vehicle:2")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	kept, err := helper.GetString(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, "true", kept)
}
