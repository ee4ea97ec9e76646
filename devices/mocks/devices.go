// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
)

var _ devices.DeviceRepository = (*deviceRepositoryMock)(nil)

type deviceRepositoryMock struct {
	mu      sync.Mutex
	devices map[string]devices.Device
}

// NewDeviceRepository creates in-memory device repository.
func NewDeviceRepository(devs ...devices.Device) devices.DeviceRepository {
	repo := &deviceRepositoryMock{
		devices: make(map[string]devices.Device),
	}
	for _, d := range devs {
		repo.devices[d.ID] = d
	}
	return repo
}

func (drm *deviceRepositoryMock) Save(_ context.Context, device devices.Device) (string, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	if _, ok := drm.devices[device.ID]; ok {
		return "", errors.ErrConflict
	}

	drm.devices[device.ID] = device
	return device.ID, nil
}

func (drm *deviceRepositoryMock) Update(_ context.Context, device devices.Device) error {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	if _, ok := drm.devices[device.ID]; !ok {
		return errors.ErrNotFound
	}

	drm.devices[device.ID] = device
	return nil
}

func (drm *deviceRepositoryMock) RetrieveByID(_ context.Context, id, ownerID string) (devices.Device, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	if d, ok := drm.devices[id]; ok && d.OwnerID == ownerID {
		return d, nil
	}

	return devices.Device{}, errors.ErrNotFound
}

func (drm *deviceRepositoryMock) RetrieveAny(_ context.Context, id string) (devices.Device, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	if d, ok := drm.devices[id]; ok {
		return d, nil
	}

	return devices.Device{}, errors.ErrNotFound
}

func (drm *deviceRepositoryMock) RetrieveByOwner(_ context.Context, ownerID string, pm devices.PageMetadata) (devices.DevicesPage, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	matched := []devices.Device{}
	for _, d := range drm.devices {
		if d.OwnerID != ownerID {
			continue
		}
		if pm.Type != "" && d.Type != pm.Type {
			continue
		}
		if pm.Status != "" && d.Status != pm.Status {
			continue
		}
		matched = append(matched, d)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := uint64(len(matched))

	first := pm.Offset
	if first > total {
		first = total
	}
	last := first + pm.Limit
	if pm.Limit == 0 || last > total {
		last = total
	}

	page := devices.DevicesPage{
		PageMetadata: pm,
		Devices:      matched[first:last],
	}
	page.Total = total

	return page, nil
}

func (drm *deviceRepositoryMock) Remove(_ context.Context, id, ownerID string) error {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	if d, ok := drm.devices[id]; ok && d.OwnerID == ownerID {
		delete(drm.devices, id)
		return nil
	}

	return errors.ErrNotFound
}

func (drm *deviceRepositoryMock) RetrieveStats(_ context.Context, ownerID string) (devices.Stats, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	var stats devices.Stats
	for _, d := range drm.devices {
		if d.OwnerID != ownerID {
			continue
		}
		stats.Total++
		switch d.Status {
		case devices.StatusActive:
			stats.Active++
		case devices.StatusInactive:
			stats.Inactive++
		case devices.StatusOffline:
			stats.Offline++
		case devices.StatusMaintenance:
			stats.Maintenance++
		}
	}

	return stats, nil
}

func (drm *deviceRepositoryMock) RetrieveByType(_ context.Context, ownerID string) ([]devices.TypeGroup, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	counts := map[string]uint64{}
	for _, d := range drm.devices {
		if d.OwnerID == ownerID {
			counts[d.Type]++
		}
	}

	groups := []devices.TypeGroup{}
	for t, c := range counts {
		groups = append(groups, devices.TypeGroup{Type: t, Count: c})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Type < groups[j].Type
	})

	return groups, nil
}

func (drm *deviceRepositoryMock) RetrieveInactive(_ context.Context, threshold time.Time) ([]devices.Device, error) {
	drm.mu.Lock()
	defer drm.mu.Unlock()

	matched := []devices.Device{}
	for _, d := range drm.devices {
		if d.Status == devices.StatusInactive {
			continue
		}
		if d.LastActiveAt == nil || d.LastActiveAt.Before(threshold) {
			matched = append(matched, d)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})

	return matched, nil
}
