// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devices_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/devices/mocks"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	cachemocks "github.com/DeviceHubLabs/devicehub/pkg/cache/mocks"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/pkg/uuid"
	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	token      = "token-1"
	otherToken = "token-2"
	wrongToken = "wrong"
)

var (
	owner      = users.User{ID: "user-1", Email: "owner@example.com", IsActive: true}
	otherOwner = users.User{ID: "user-2", Email: "other@example.com", IsActive: true}
)

func newService(store cache.Store, devs ...devices.Device) devices.Service {
	auth := mocks.NewAuthenticator(map[string]users.User{
		token:      owner,
		otherToken: otherOwner,
	})
	repo := mocks.NewDeviceRepository(devs...)
	logs := mocks.NewLogRepository()

	return devices.New(auth, repo, logs, store, uuid.New(), logger.NewMock())
}

func TestCreateDevice(t *testing.T) {
	svc := newService(cachemocks.NewStore())

	cases := []struct {
		desc   string
		token  string
		device devices.Device
		err    error
	}{
		{
			desc:   "create valid device",
			token:  token,
			device: devices.Device{Name: "hall lamp", Type: devices.TypeLight},
			err:    nil,
		},
		{
			desc:   "create device with invalid type",
			token:  token,
			device: devices.Device{Name: "mystery", Type: "toaster"},
			err:    errors.ErrMalformedEntity,
		},
		{
			desc:   "create device with missing name",
			token:  token,
			device: devices.Device{Type: devices.TypeLight},
			err:    errors.ErrMalformedEntity,
		},
		{
			desc:   "create device with wrong token",
			token:  wrongToken,
			device: devices.Device{Name: "hall lamp", Type: devices.TypeLight},
			err:    errors.ErrAuthentication,
		},
	}

	for _, tc := range cases {
		saved, err := svc.CreateDevice(context.Background(), tc.token, tc.device)
		if tc.err == nil {
			require.NoError(t, err, tc.desc)
			assert.NotEmpty(t, saved.ID, tc.desc)
			assert.Equal(t, owner.ID, saved.OwnerID, tc.desc)
			assert.Equal(t, devices.StatusActive, saved.Status, tc.desc)
			continue
		}
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s", tc.desc, tc.err, err))
	}
}

func TestViewDeviceReadThrough(t *testing.T) {
	store := cachemocks.NewStore()
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "thermostat", Type: devices.TypeThermostat, Status: devices.StatusActive}
	svc := newService(store, dev)
	ctx := context.Background()

	first, err := svc.ViewDevice(ctx, token, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, dev.ID, first.ID)
	assert.Contains(t, store.Keys(), "device-single:dev-1:user-1", "first read must populate the cache")

	// The plain service never invalidates, so a repo-level removal is
	// invisible while the cached entry lives.
	_, err = svc.RemoveDevice(ctx, token, dev.ID)
	require.NoError(t, err)

	second, err := svc.ViewDevice(ctx, token, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second read must be served from the cache")

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestListDevicesFilterKeys(t *testing.T) {
	store := cachemocks.NewStore()
	svc := newService(store,
		devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "lamp", Type: devices.TypeLight, Status: devices.StatusActive},
		devices.Device{ID: "dev-2", OwnerID: owner.ID, Name: "meter", Type: devices.TypeSmartMeter, Status: devices.StatusOffline},
	)
	ctx := context.Background()

	all, err := svc.ListDevices(ctx, token, devices.PageMetadata{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), all.Total)

	active, err := svc.ListDevices(ctx, token, devices.PageMetadata{Limit: 10, Status: devices.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), active.Total)

	keys := store.Keys()
	assert.Len(t, keys, 2, "each filter combination must get its own cache entry")

	_, err = svc.ListDevices(ctx, token, devices.PageMetadata{Limit: 10, Status: "sideways"})
	assert.True(t, errors.Contains(err, errors.ErrMalformedEntity), "invalid status filter must be rejected")
}

func TestViewDeviceStatsCachesEmptyAggregate(t *testing.T) {
	store := cachemocks.NewStore()
	svc := newService(store)
	ctx := context.Background()

	stats, err := svc.ViewDeviceStats(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, devices.Stats{}, stats)
	assert.Contains(t, store.Keys(), "device-stats:user-1", "empty aggregates are cacheable answers")

	_, err = svc.ViewDeviceStats(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), store.Stats().Hits)
}

func TestRecordHeartbeat(t *testing.T) {
	store := cachemocks.NewStore()
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "cam", Type: devices.TypeSecurityCam, Status: devices.StatusOffline}
	svc := newService(store, dev)
	ctx := context.Background()

	hb, err := svc.RecordHeartbeat(ctx, token, dev.ID, devices.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, devices.StatusOffline, hb.PreviousStatus)
	assert.Equal(t, devices.StatusActive, hb.Device.Status)
	require.NotNil(t, hb.Device.LastActiveAt)

	hb, err = svc.RecordHeartbeat(ctx, token, dev.ID, "")
	require.NoError(t, err)
	assert.Equal(t, devices.StatusActive, hb.PreviousStatus, "status must be unchanged without an explicit transition")
	assert.Equal(t, devices.StatusActive, hb.Device.Status)

	_, err = svc.RecordHeartbeat(ctx, token, dev.ID, "charging")
	assert.True(t, errors.Contains(err, errors.ErrMalformedEntity))

	_, err = svc.RecordHeartbeat(ctx, otherToken, dev.ID, "")
	assert.True(t, errors.Contains(err, errors.ErrNotFound), "heartbeat must be scoped to the owner")
}

func TestViewDeviceUsage(t *testing.T) {
	store := cachemocks.NewStore()
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "meter", Type: devices.TypeSmartMeter, Status: devices.StatusActive}
	svc := newService(store, dev)
	ctx := context.Background()

	for _, v := range []float64{1.5, 2.5} {
		_, err := svc.CreateDeviceLog(ctx, token, devices.Log{
			DeviceID: dev.ID,
			Event:    devices.EventUnitsConsumed,
			Value:    v,
		})
		require.NoError(t, err)
	}

	summary, err := svc.ViewDeviceUsage(ctx, token, dev.ID, devices.RangeDay)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.TotalUnits)
	assert.Equal(t, uint64(2), summary.Count)

	_, err = svc.ViewDeviceUsage(ctx, token, dev.ID, "90d")
	assert.True(t, errors.Contains(err, errors.ErrMalformedEntity), "unknown range must be rejected")
}

func TestDegradedCacheFallsThrough(t *testing.T) {
	store := cache.NewStore(nil, logger.NewMock())
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "lock", Type: devices.TypeDoorLock, Status: devices.StatusActive}
	svc := newService(store, dev)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.ViewDevice(ctx, token, dev.ID)
		require.NoError(t, err)
		assert.Equal(t, dev.ID, got.ID)
	}

	stats := store.Stats()
	assert.Equal(t, uint64(0), stats.Hits, "degraded mode never produces hits")
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestListInactiveDevices(t *testing.T) {
	store := cachemocks.NewStore()
	stale := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()
	svc := newService(store,
		devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "old cam", Type: devices.TypeSecurityCam, Status: devices.StatusActive, LastActiveAt: &stale},
		devices.Device{ID: "dev-2", OwnerID: owner.ID, Name: "new cam", Type: devices.TypeSecurityCam, Status: devices.StatusActive, LastActiveAt: &fresh},
		devices.Device{ID: "dev-3", OwnerID: otherOwner.ID, Name: "silent lamp", Type: devices.TypeLight, Status: devices.StatusActive},
		devices.Device{ID: "dev-4", OwnerID: owner.ID, Name: "known inactive", Type: devices.TypeLight, Status: devices.StatusInactive, LastActiveAt: &stale},
	)
	ctx := context.Background()

	devs, err := svc.ListInactiveDevices(ctx, 24*time.Hour)
	require.NoError(t, err)

	ids := make([]string, 0, len(devs))
	for _, d := range devs {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{"dev-1", "dev-3"}, ids,
		"never-active devices count, already inactive ones do not")

	deactivated, err := svc.DeactivateDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, devices.StatusInactive, deactivated.Status)
}
