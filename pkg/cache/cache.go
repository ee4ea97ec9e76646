// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package cache provides a read-through cache store used in front of the
// device repository. Every operation is a pure optimization: backend errors
// and a missing backend both degrade to a miss or a no-op, so the system
// stays correct, if slower, with the cache entirely absent.
package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Health statuses reported by the store probe. Disabled means that no
// backend was configured at all, while StatusError means a configured
// backend is unreachable.
const (
	StatusConnected = "connected"
	StatusDisabled  = "disabled"
	StatusError     = "error"
)

// Store specifies the cache store API. Implementations must never turn a
// backend failure into a hard error: reads degrade to misses and writes
// report plain success flags.
type Store interface {
	// Get returns the value cached under the given key, if present.
	Get(ctx context.Context, key Key) ([]byte, bool)

	// Set caches the value under the given key for the given TTL. A zero
	// TTL means no expiry.
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) bool

	// Delete removes the value cached under the given key.
	Delete(ctx context.Context, key Key) bool

	// DeletePattern removes all values whose keys match the given pattern.
	// Zero matching keys is still a success.
	DeletePattern(ctx context.Context, pattern string) bool

	// Health issues a single round-trip probe against the backend.
	Health(ctx context.Context) Health

	// Stats returns a snapshot of the hit/miss accounting counters.
	Stats() Stats

	// ResetStats resets the accounting counters to zero.
	ResetStats()
}

// Health contains the result of a cache backend probe.
type Health struct {
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Stats contains process-lifetime cache accounting counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
}

// HitRate returns the fraction of reads served from the cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// counters is embedded by store implementations to share the accounting
// logic. All fields are manipulated atomically.
type counters struct {
	hits    uint64
	misses  uint64
	sets    uint64
	deletes uint64
}

func (c *counters) hit()            { atomic.AddUint64(&c.hits, 1) }
func (c *counters) miss()           { atomic.AddUint64(&c.misses, 1) }
func (c *counters) set()            { atomic.AddUint64(&c.sets, 1) }
func (c *counters) delete(n uint64) { atomic.AddUint64(&c.deletes, n) }

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.hits),
		Misses:  atomic.LoadUint64(&c.misses),
		Sets:    atomic.LoadUint64(&c.sets),
		Deletes: atomic.LoadUint64(&c.deletes),
	}
}

func (c *counters) reset() {
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
	atomic.StoreUint64(&c.sets, 0)
	atomic.StoreUint64(&c.deletes, 0)
}
