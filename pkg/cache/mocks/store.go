// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/cache"
)

var _ cache.Store = (*Store)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

// Store is an in-memory cache store mock. Its clock is injectable so that
// TTL expiry can be tested deterministically.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time

	hits    uint64
	misses  uint64
	sets    uint64
	deletes uint64
}

// NewStore returns a mock store running on the real clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock returns a mock store reading time from the given clock.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (s *Store) Get(_ context.Context, key cache.Key) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.String()]
	if !ok {
		s.misses++
		return nil, false
	}

	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key.String())
		s.misses++
		return nil, false
	}

	s.hits++
	return e.value, true
}

func (s *Store) Set(_ context.Context, key cache.Key, value []byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}

	s.entries[key.String()] = e
	s.sets++
	return true
}

func (s *Store) Delete(_ context.Context, key cache.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key.String()]; ok {
		delete(s.entries, key.String())
		s.deletes++
	}
	return true
}

func (s *Store) DeletePattern(_ context.Context, pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
			s.deletes++
		}
	}
	return true
}

func (s *Store) Health(_ context.Context) cache.Health {
	return cache.Health{Status: cache.StatusConnected}
}

func (s *Store) Stats() cache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cache.Stats{
		Hits:    s.hits,
		Misses:  s.misses,
		Sets:    s.sets,
		Deletes: s.deletes,
	}
}

func (s *Store) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits, s.misses, s.sets, s.deletes = 0, 0, 0, 0
}

// Keys returns the currently cached key strings. Test helper.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
