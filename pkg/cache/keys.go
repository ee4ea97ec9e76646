// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Domain tags a logical group of cached values. Every domain has a fixed
// TTL; shorter TTLs are assigned to time-sensitive or high-churn domains.
type Domain string

const (
	DeviceList      Domain = "device-list"
	DeviceSingle    Domain = "device-single"
	DevicesByType   Domain = "devices-by-type"
	DeviceStats     Domain = "device-stats"
	Analytics       Domain = "analytics"
	UserProfile     Domain = "user-profile"
	InactiveDevices Domain = "inactive-devices"
)

var ttls = map[Domain]time.Duration{
	DeviceList:      30 * time.Minute,
	DeviceSingle:    15 * time.Minute,
	DevicesByType:   20 * time.Minute,
	DeviceStats:     10 * time.Minute,
	Analytics:       5 * time.Minute,
	UserProfile:     30 * time.Minute,
	InactiveDevices: 5 * time.Minute,
}

// TTL returns the time-to-live assigned to the domain.
func (d Domain) TTL() time.Duration {
	return ttls[d]
}

// Key is a typed cache key rendered as "domain:id[:discriminator]...".
// Discriminators carry query-filter fingerprints so that distinct filter
// combinations never collide.
type Key struct {
	domain Domain
	id     string
	disc   []string
}

// NewKey builds a cache key for the given domain and primary identifier,
// with optional discriminators.
func NewKey(domain Domain, id string, disc ...string) Key {
	return Key{domain: domain, id: id, disc: disc}
}

// String renders the key to its canonical string form. Identical inputs
// always produce the identical string.
func (k Key) String() string {
	parts := append([]string{string(k.domain), k.id}, k.disc...)
	return strings.Join(parts, ":")
}

// Pattern renders the wildcard matching every key in the id's namespace
// within the domain, discriminators included.
func (k Key) Pattern() string {
	return fmt.Sprintf("%s:%s:*", k.domain, k.id)
}

// Fingerprint renders a canonical, order-independent serialization of the
// given filter fields, suitable as a key discriminator. An empty filter set
// yields a marker distinct from any non-empty serialization.
func Fingerprint(filters map[string]string) string {
	if len(filters) == 0 {
		return "none"
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, filters[k]))
	}

	return strings.Join(pairs, "&")
}
