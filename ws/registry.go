// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package ws

import "sync"

// registry tracks live connections per user. A user is present in the map
// only while at least one connection is registered; unregistering the last
// connection removes the user's entry entirely.
type registry struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func newRegistry() *registry {
	return &registry{
		clients: make(map[string]map[*Client]bool),
	}
}

func (r *registry) add(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.clients[userID]
	if !ok {
		set = make(map[*Client]bool)
		r.clients[userID] = set
	}
	set[c] = true
}

func (r *registry) remove(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.clients[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.clients, userID)
	}
}

// snapshot returns the user's current connections. The returned slice is
// detached from the registry, so sends never hold the registry lock.
func (r *registry) snapshot(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.clients[userID]
	cs := make([]*Client, 0, len(set))
	for c := range set {
		cs = append(cs, c)
	}
	return cs
}

func (r *registry) snapshotAll() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cs []*Client
	for _, set := range r.clients {
		for c := range set {
			cs = append(cs, c)
		}
	}
	return cs
}

func (r *registry) stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Stats{
		ActiveUsers:        uint64(len(r.clients)),
		ConnectionsPerUser: make(map[string]uint64, len(r.clients)),
	}
	for userID, set := range r.clients {
		st.TotalConnections += uint64(len(set))
		st.ConnectionsPerUser[userID] = uint64(len(set))
	}
	return st
}
