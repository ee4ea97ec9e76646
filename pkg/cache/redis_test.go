// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRoundtrip(t *testing.T) {
	_ = redisClient.FlushAll(context.Background()).Err()
	store := cache.NewStore(redisClient, logger.NewMock())
	ctx := context.Background()

	key := cache.NewKey(cache.DeviceSingle, "dev-1", "user-1")
	val := []byte(`{"id":"dev-1","name":"hall light"}`)

	ok := store.Set(ctx, key, val, cache.DeviceSingle.TTL())
	require.True(t, ok, "set with a live backend must succeed")

	got, ok := store.Get(ctx, key)
	assert.True(t, ok, "value must be readable after set")
	assert.Equal(t, val, got)

	_, ok = store.Get(ctx, cache.NewKey(cache.DeviceSingle, "dev-2", "user-1"))
	assert.False(t, ok, "absent key must resolve to a miss")
}

func TestRedisDelete(t *testing.T) {
	_ = redisClient.FlushAll(context.Background()).Err()
	store := cache.NewStore(redisClient, logger.NewMock())
	ctx := context.Background()

	key := cache.NewKey(cache.DeviceStats, "user-1")
	store.Set(ctx, key, []byte(`{}`), cache.DeviceStats.TTL())

	assert.True(t, store.Delete(ctx, key))

	_, ok := store.Get(ctx, key)
	assert.False(t, ok, "deleted key must resolve to a miss")
}

func TestRedisDeletePattern(t *testing.T) {
	_ = redisClient.FlushAll(context.Background()).Err()
	store := cache.NewStore(redisClient, logger.NewMock())
	ctx := context.Background()

	owned := []cache.Key{
		cache.NewKey(cache.DeviceList, "user-1", "none"),
		cache.NewKey(cache.DeviceList, "user-1", "status=active"),
	}
	for _, k := range owned {
		store.Set(ctx, k, []byte(`{}`), cache.DeviceList.TTL())
	}
	other := cache.NewKey(cache.DeviceList, "user-2", "none")
	store.Set(ctx, other, []byte(`{}`), cache.DeviceList.TTL())

	ok := store.DeletePattern(ctx, cache.NewKey(cache.DeviceList, "user-1").Pattern())
	require.True(t, ok)

	for _, k := range owned {
		_, hit := store.Get(ctx, k)
		assert.False(t, hit, fmt.Sprintf("key %s must be gone after pattern delete", k))
	}

	_, hit := store.Get(ctx, other)
	assert.True(t, hit, "pattern delete must not touch other owners' namespaces")
}

func TestRedisDeletePatternNoMatch(t *testing.T) {
	_ = redisClient.FlushAll(context.Background()).Err()
	store := cache.NewStore(redisClient, logger.NewMock())

	ok := store.DeletePattern(context.Background(), cache.NewKey(cache.Analytics, "nobody").Pattern())
	assert.True(t, ok, "pattern delete with zero matching keys is still a success")
}

func TestRedisHealth(t *testing.T) {
	store := cache.NewStore(redisClient, logger.NewMock())

	health := store.Health(context.Background())
	assert.Equal(t, cache.StatusConnected, health.Status)
	assert.True(t, health.ResponseTime >= 0 && health.ResponseTime < time.Second)
	assert.Empty(t, health.Error)
}
