// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/DeviceHubLabs/devicehub/pkg/cache/mocks"
	"github.com/stretchr/testify/assert"
)

func TestDegradedMode(t *testing.T) {
	store := cache.NewStore(nil, logger.NewMock())
	ctx := context.Background()
	key := cache.NewKey(cache.DeviceStats, "user-1")

	val, ok := store.Get(ctx, key)
	assert.False(t, ok, "get without a backend must resolve to a miss")
	assert.Nil(t, val)

	assert.False(t, store.Set(ctx, key, []byte(`{}`), time.Minute), "set without a backend must report failure")
	assert.False(t, store.Delete(ctx, key), "delete without a backend must report failure")
	assert.False(t, store.DeletePattern(ctx, key.Pattern()), "pattern delete without a backend must report failure")

	health := store.Health(ctx)
	assert.Equal(t, cache.StatusDisabled, health.Status, "missing backend must be reported as disabled, not as an error")

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Misses, "degraded get must still count as a miss")
	assert.Equal(t, uint64(0), stats.Hits)
}

func TestTTLExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store := mocks.NewStoreWithClock(clock)
	ctx := context.Background()
	key := cache.NewKey(cache.Analytics, "user-1", "type=usage")
	val := []byte(`{"usage":42}`)

	ok := store.Set(ctx, key, val, cache.Analytics.TTL())
	assert.True(t, ok)

	got, ok := store.Get(ctx, key)
	assert.True(t, ok, "value must be readable within the TTL window")
	assert.Equal(t, val, got)

	now = now.Add(cache.Analytics.TTL() - time.Second)
	got, ok = store.Get(ctx, key)
	assert.True(t, ok, "value must still be readable just before expiry")
	assert.Equal(t, val, got)

	now = now.Add(2 * time.Second)
	_, ok = store.Get(ctx, key)
	assert.False(t, ok, "value must not be readable after the TTL has elapsed")
}

func TestStatsAccounting(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	key := cache.NewKey(cache.UserProfile, "user-1")

	_, ok := store.Get(ctx, key)
	assert.False(t, ok)

	store.Set(ctx, key, []byte(`{}`), cache.UserProfile.TTL())
	_, ok = store.Get(ctx, key)
	assert.True(t, ok)
	store.Delete(ctx, key)

	stats := store.Stats()
	assert.Equal(t, cache.Stats{Hits: 1, Misses: 1, Sets: 1, Deletes: 1}, stats)
	assert.Equal(t, 0.5, stats.HitRate())

	store.ResetStats()
	assert.Equal(t, cache.Stats{}, store.Stats())
}
