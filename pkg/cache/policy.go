// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache

import "context"

// Mutation kinds recognized by the invalidation policy.
const (
	MutationDeviceCreate       = "device.create"
	MutationDeviceUpdate       = "device.update"
	MutationDeviceRemove       = "device.remove"
	MutationDeviceHeartbeat    = "device.heartbeat"
	MutationDeviceStatusChange = "device.status_change"
	MutationDeviceLogCreate    = "device_log.create"
	MutationProfileUpdate      = "profile.update"
)

// Invalidation is the set of exact keys and key patterns a mutation must
// clear. List-shaped domains are keyed per filter combination, so they are
// always cleared by pattern over the owner's whole namespace; single-entity
// and aggregate domains use exact deletes since their key is fully
// determined by entity and owner ID.
type Invalidation struct {
	Keys     []Key
	Patterns []string
}

// InvalidationFor returns the invalidation set for the given mutation kind.
// This is a static table, not a service with logic: each mutation maps to
// the exact keys and patterns it must clear, and nothing else.
func InvalidationFor(mutation, ownerID, deviceID string) Invalidation {
	switch mutation {
	case MutationDeviceCreate:
		return Invalidation{
			Keys: []Key{
				NewKey(DeviceStats, ownerID),
				NewKey(DevicesByType, ownerID),
			},
			Patterns: []string{
				NewKey(DeviceList, ownerID).Pattern(),
			},
		}
	case MutationDeviceUpdate, MutationDeviceRemove:
		return Invalidation{
			Keys: []Key{
				NewKey(DeviceStats, ownerID),
				NewKey(DevicesByType, ownerID),
				NewKey(DeviceSingle, deviceID, ownerID),
			},
			Patterns: []string{
				NewKey(DeviceList, ownerID).Pattern(),
				NewKey(Analytics, ownerID).Pattern(),
			},
		}
	case MutationDeviceHeartbeat:
		return Invalidation{
			Keys: []Key{
				NewKey(DeviceSingle, deviceID, ownerID),
			},
		}
	case MutationDeviceStatusChange:
		return Invalidation{
			Keys: []Key{
				NewKey(DeviceSingle, deviceID, ownerID),
				NewKey(DeviceStats, ownerID),
				NewKey(DevicesByType, ownerID),
			},
		}
	case MutationDeviceLogCreate:
		return Invalidation{
			Patterns: []string{
				NewKey(Analytics, ownerID).Pattern(),
			},
		}
	case MutationProfileUpdate:
		return Invalidation{
			Keys: []Key{
				NewKey(UserProfile, ownerID),
			},
		}
	}

	return Invalidation{}
}

// Invalidate clears the given invalidation set against the store. It
// reports whether every delete succeeded; partial failure is acceptable
// since every entry expires on its own TTL anyway.
func Invalidate(ctx context.Context, store Store, inv Invalidation) bool {
	ok := true
	for _, key := range inv.Keys {
		if !store.Delete(ctx, key) {
			ok = false
		}
	}
	for _, pattern := range inv.Patterns {
		if !store.DeletePattern(ctx, pattern) {
			ok = false
		}
	}
	return ok
}
