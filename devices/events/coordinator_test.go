// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/devices/events"
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
)

var (
	owner      = users.User{ID: "user-1", Email: "owner@example.com", IsActive: true}
	otherOwner = users.User{ID: "user-2", Email: "other@example.com", IsActive: true}
)

type updateCall struct {
	userID         string
	action         string
	deviceID       string
	previousStatus string
}

type notifierMock struct {
	mu         sync.Mutex
	updates    []updateCall
	heartbeats []string
	analytics  []string
}

func (nm *notifierMock) NotifyDeviceUpdate(userID, action string, device devices.Device, previousStatus string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.updates = append(nm.updates, updateCall{userID, action, device.ID, previousStatus})
}

func (nm *notifierMock) NotifyDeviceHeartbeat(userID string, device devices.Device) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.heartbeats = append(nm.heartbeats, userID)
}

func (nm *notifierMock) NotifyAnalyticsUpdate(userID string, log devices.Log) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.analytics = append(nm.analytics, userID)
}

func (nm *notifierMock) snapshotUpdates() []updateCall {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return append([]updateCall{}, nm.updates...)
}

func (nm *notifierMock) snapshotHeartbeats() []string {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return append([]string{}, nm.heartbeats...)
}

func (nm *notifierMock) snapshotAnalytics() []string {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return append([]string{}, nm.analytics...)
}

type tokenParserMock struct {
	subjects map[string]string
}

func (tpm tokenParserMock) VerifyToken(token string) (string, error) {
	if id, ok := tpm.subjects[token]; ok {
		return id, nil
	}
	return "", errors.ErrAuthentication
}

func newCoordinated(store cache.Store, devs ...devices.Device) (devices.Service, *notifierMock) {
	auth := mocks.NewAuthenticator(map[string]users.User{
		token:      owner,
		otherToken: otherOwner,
	})
	notifier := &notifierMock{}
	parser := tokenParserMock{subjects: map[string]string{
		token:      owner.ID,
		otherToken: otherOwner.ID,
	}}

	svc := devices.New(auth, mocks.NewDeviceRepository(devs...), mocks.NewLogRepository(), store, uuid.New(), logger.NewMock())
	svc = events.NewCoordinatorMiddleware(svc, store, notifier, parser, logger.NewMock())

	return svc, notifier
}

func seed(t *testing.T, store cache.Store, keys ...cache.Key) {
	t.Helper()
	for _, k := range keys {
		require.True(t, store.Set(context.Background(), k, []byte("{}"), time.Minute))
	}
}

func TestCreateDeviceSideEffects(t *testing.T) {
	store := cachemocks.NewStore()
	svc, notifier := newCoordinated(store)
	seed(t, store,
		cache.NewKey(cache.DeviceList, owner.ID, "none"),
		cache.NewKey(cache.DeviceStats, owner.ID),
		cache.NewKey(cache.DevicesByType, owner.ID),
		cache.NewKey(cache.DeviceList, otherOwner.ID, "none"),
	)

	saved, err := svc.CreateDevice(context.Background(), token, devices.Device{Name: "lamp", Type: devices.TypeLight})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(store.Keys()) == 1
	}, time.Second, 10*time.Millisecond, "owner's list, stats and by-type entries must be cleared")
	assert.ElementsMatch(t, []string{"device-list:user-2:none"}, store.Keys(),
		"other owners' entries must survive")

	assert.Eventually(t, func() bool {
		ups := notifier.snapshotUpdates()
		return len(ups) == 1 && ups[0] == updateCall{owner.ID, events.ActionCreated, saved.ID, ""}
	}, time.Second, 10*time.Millisecond, "owner must be notified about the created device")
}

func TestUpdateDeviceSideEffects(t *testing.T) {
	store := cachemocks.NewStore()
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "lamp", Type: devices.TypeLight, Status: devices.StatusActive}
	svc, notifier := newCoordinated(store, dev)
	seed(t, store,
		cache.NewKey(cache.DeviceSingle, dev.ID, owner.ID),
		cache.NewKey(cache.DeviceList, owner.ID, "status=active"),
		cache.NewKey(cache.DeviceStats, owner.ID),
		cache.NewKey(cache.DevicesByType, owner.ID),
		cache.NewKey(cache.Analytics, owner.ID, "device=dev-1&range=24h"),
		cache.NewKey(cache.UserProfile, owner.ID),
	)

	_, err := svc.UpdateDevice(context.Background(), token, devices.Device{ID: dev.ID, Name: "desk lamp"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(store.Keys()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"user-profile:user-1"}, store.Keys(),
		"profile entries are not device mutation targets")

	assert.Eventually(t, func() bool {
		ups := notifier.snapshotUpdates()
		return len(ups) == 1 && ups[0].action == events.ActionUpdated
	}, time.Second, 10*time.Millisecond)
}

func TestHeartbeatSideEffects(t *testing.T) {
	cases := []struct {
		desc          string
		status        string
		wantRemaining []string
		wantUpdates   int
	}{
		{
			desc:   "heartbeat without status change clears the single entry only",
			status: "",
			wantRemaining: []string{
				"device-stats:user-1",
				"devices-by-type:user-1",
			},
			wantUpdates: 0,
		},
		{
			desc:          "heartbeat with status change clears aggregates too",
			status:        devices.StatusMaintenance,
			wantRemaining: []string{},
			wantUpdates:   1,
		},
	}

	for _, tc := range cases {
		store := cachemocks.NewStore()
		dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "cam", Type: devices.TypeSecurityCam, Status: devices.StatusActive}
		svc, notifier := newCoordinated(store, dev)
		seed(t, store,
			cache.NewKey(cache.DeviceSingle, dev.ID, owner.ID),
			cache.NewKey(cache.DeviceStats, owner.ID),
			cache.NewKey(cache.DevicesByType, owner.ID),
		)

		hb, err := svc.RecordHeartbeat(context.Background(), token, dev.ID, tc.status)
		require.NoError(t, err, tc.desc)
		assert.Equal(t, devices.StatusActive, hb.PreviousStatus, tc.desc)

		assert.Eventually(t, func() bool {
			return len(store.Keys()) == len(tc.wantRemaining)
		}, time.Second, 10*time.Millisecond, tc.desc)
		assert.ElementsMatch(t, tc.wantRemaining, store.Keys(), tc.desc)

		assert.Eventually(t, func() bool {
			return len(notifier.snapshotHeartbeats()) == 1
		}, time.Second, 10*time.Millisecond, tc.desc)

		if tc.wantUpdates > 0 {
			assert.Eventually(t, func() bool {
				ups := notifier.snapshotUpdates()
				return len(ups) == tc.wantUpdates && ups[0].action == events.ActionStatusChanged && ups[0].previousStatus == devices.StatusActive
			}, time.Second, 10*time.Millisecond, tc.desc)
		} else {
			assert.Empty(t, notifier.snapshotUpdates(), tc.desc)
		}
	}
}

func TestCreateDeviceLogSideEffects(t *testing.T) {
	store := cachemocks.NewStore()
	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "meter", Type: devices.TypeSmartMeter, Status: devices.StatusActive}
	svc, notifier := newCoordinated(store, dev)
	seed(t, store,
		cache.NewKey(cache.Analytics, owner.ID, "device=dev-1&range=24h"),
		cache.NewKey(cache.Analytics, owner.ID, "device=dev-1&range=7d"),
		cache.NewKey(cache.DeviceSingle, dev.ID, owner.ID),
		cache.NewKey(cache.Analytics, otherOwner.ID, "device=dev-9&range=24h"),
	)

	_, err := svc.CreateDeviceLog(context.Background(), token, devices.Log{
		DeviceID: dev.ID,
		Event:    devices.EventUnitsConsumed,
		Value:    3.5,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(store.Keys()) == 2
	}, time.Second, 10*time.Millisecond, "owner's analytics namespace must be cleared")
	assert.ElementsMatch(t, []string{"device-single:dev-1:user-1", "analytics:user-2:device=dev-9&range=24h"}, store.Keys())

	assert.Eventually(t, func() bool {
		an := notifier.snapshotAnalytics()
		return len(an) == 1 && an[0] == owner.ID
	}, time.Second, 10*time.Millisecond)
}

func TestFailedMutationHasNoSideEffects(t *testing.T) {
	store := cachemocks.NewStore()
	svc, notifier := newCoordinated(store)
	seed(t, store, cache.NewKey(cache.DeviceStats, owner.ID))

	_, err := svc.UpdateDevice(context.Background(), token, devices.Device{ID: "ghost", Name: "x"})
	require.Error(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.ElementsMatch(t, []string{"device-stats:user-1"}, store.Keys())
	assert.Empty(t, notifier.snapshotUpdates())
}
