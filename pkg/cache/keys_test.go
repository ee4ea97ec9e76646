// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	cases := []struct {
		desc string
		key  cache.Key
		want string
	}{
		{
			desc: "key without discriminators",
			key:  cache.NewKey(cache.DeviceStats, "user-1"),
			want: "device-stats:user-1",
		},
		{
			desc: "key with single discriminator",
			key:  cache.NewKey(cache.DeviceSingle, "dev-1", "user-1"),
			want: "device-single:dev-1:user-1",
		},
		{
			desc: "key with filter fingerprint",
			key:  cache.NewKey(cache.DeviceList, "user-1", cache.Fingerprint(map[string]string{"status": "active"})),
			want: "device-list:user-1:status=active",
		},
		{
			desc: "key with empty filter fingerprint",
			key:  cache.NewKey(cache.DeviceList, "user-1", cache.Fingerprint(nil)),
			want: "device-list:user-1:none",
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.key.String(), fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.want, tc.key.String()))
	}
}

func TestKeyPattern(t *testing.T) {
	key := cache.NewKey(cache.DeviceList, "user-1")
	assert.Equal(t, "device-list:user-1:*", key.Pattern())
}

func TestFingerprintDeterminism(t *testing.T) {
	a := cache.Fingerprint(map[string]string{"type": "light", "status": "active", "page": "2"})
	b := cache.Fingerprint(map[string]string{"page": "2", "status": "active", "type": "light"})
	assert.Equal(t, a, b, "identical filter sets must produce identical fingerprints")
	assert.Equal(t, "page=2&status=active&type=light", a)
}

func TestFingerprintCollisions(t *testing.T) {
	cases := []struct {
		desc string
		a    map[string]string
		b    map[string]string
	}{
		{
			desc: "empty vs non-empty filter set",
			a:    nil,
			b:    map[string]string{"status": "active"},
		},
		{
			desc: "different values for same field",
			a:    map[string]string{"status": "active"},
			b:    map[string]string{"status": "offline"},
		},
		{
			desc: "different fields",
			a:    map[string]string{"status": "active"},
			b:    map[string]string{"type": "active"},
		},
	}

	for _, tc := range cases {
		assert.NotEqual(t, cache.Fingerprint(tc.a), cache.Fingerprint(tc.b), tc.desc)
	}
}

func TestDomainTTL(t *testing.T) {
	cases := []struct {
		domain cache.Domain
		ttl    time.Duration
	}{
		{cache.DeviceList, 1800 * time.Second},
		{cache.DeviceSingle, 900 * time.Second},
		{cache.DevicesByType, 1200 * time.Second},
		{cache.DeviceStats, 600 * time.Second},
		{cache.Analytics, 300 * time.Second},
		{cache.UserProfile, 1800 * time.Second},
		{cache.InactiveDevices, 300 * time.Second},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ttl, tc.domain.TTL(), fmt.Sprintf("ttl for %s", tc.domain))
	}
}
