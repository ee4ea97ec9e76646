// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"context"
	"testing"

	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/DeviceHubLabs/devicehub/pkg/cache/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "user-1"
	device = "dev-1"
)

func keyStrings(keys []cache.Key) []string {
	ss := make([]string, 0, len(keys))
	for _, k := range keys {
		ss = append(ss, k.String())
	}
	return ss
}

func TestInvalidationFor(t *testing.T) {
	cases := []struct {
		desc     string
		mutation string
		keys     []string
		patterns []string
	}{
		{
			desc:     "device create",
			mutation: cache.MutationDeviceCreate,
			keys:     []string{"device-stats:user-1", "devices-by-type:user-1"},
			patterns: []string{"device-list:user-1:*"},
		},
		{
			desc:     "device update",
			mutation: cache.MutationDeviceUpdate,
			keys:     []string{"device-stats:user-1", "devices-by-type:user-1", "device-single:dev-1:user-1"},
			patterns: []string{"device-list:user-1:*", "analytics:user-1:*"},
		},
		{
			desc:     "device remove",
			mutation: cache.MutationDeviceRemove,
			keys:     []string{"device-stats:user-1", "devices-by-type:user-1", "device-single:dev-1:user-1"},
			patterns: []string{"device-list:user-1:*", "analytics:user-1:*"},
		},
		{
			desc:     "heartbeat without status change",
			mutation: cache.MutationDeviceHeartbeat,
			keys:     []string{"device-single:dev-1:user-1"},
			patterns: []string{},
		},
		{
			desc:     "heartbeat with status change",
			mutation: cache.MutationDeviceStatusChange,
			keys:     []string{"device-single:dev-1:user-1", "device-stats:user-1", "devices-by-type:user-1"},
			patterns: []string{},
		},
		{
			desc:     "device log create",
			mutation: cache.MutationDeviceLogCreate,
			keys:     []string{},
			patterns: []string{"analytics:user-1:*"},
		},
		{
			desc:     "profile update",
			mutation: cache.MutationProfileUpdate,
			keys:     []string{"user-profile:user-1"},
			patterns: []string{},
		},
		{
			desc:     "unknown mutation clears nothing",
			mutation: "device.rename",
			keys:     []string{},
			patterns: []string{},
		},
	}

	for _, tc := range cases {
		inv := cache.InvalidationFor(tc.mutation, owner, device)
		assert.ElementsMatch(t, tc.keys, keyStrings(inv.Keys), tc.desc)
		assert.ElementsMatch(t, tc.patterns, inv.Patterns, tc.desc)
	}
}

func TestInvalidateClearsAffectedKeysOnly(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()

	seeded := []cache.Key{
		cache.NewKey(cache.DeviceList, owner, "none"),
		cache.NewKey(cache.DeviceList, owner, "status=active"),
		cache.NewKey(cache.DeviceSingle, device, owner),
		cache.NewKey(cache.DeviceStats, owner),
		cache.NewKey(cache.DevicesByType, owner),
		cache.NewKey(cache.DeviceList, "user-2", "none"),
		cache.NewKey(cache.DeviceStats, "user-2"),
	}
	for _, k := range seeded {
		require.True(t, store.Set(ctx, k, []byte("{}"), cache.DeviceList.TTL()))
	}

	ok := cache.Invalidate(ctx, store, cache.InvalidationFor(cache.MutationDeviceUpdate, owner, device))
	assert.True(t, ok)

	remaining := store.Keys()
	assert.ElementsMatch(t, []string{"device-list:user-2:none", "device-stats:user-2"}, remaining,
		"other owners' entries must survive the invalidation")
}
