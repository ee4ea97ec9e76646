// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package events coordinates the side effects of device mutations: cache
// invalidation and real-time client notification. The coordinator decorates
// the devices service; side effects are spawned after the primary write
// succeeds and never influence its outcome.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
)

// Mutation actions reported to connected clients.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
)

const sideEffectTimeout = 5 * time.Second

// Notifier pushes device events to the owner's connected clients.
type Notifier interface {
	// NotifyDeviceUpdate reports a device lifecycle change.
	NotifyDeviceUpdate(userID, action string, device devices.Device, previousStatus string)

	// NotifyDeviceHeartbeat reports fresh device activity.
	NotifyDeviceHeartbeat(userID string, device devices.Device)

	// NotifyAnalyticsUpdate reports a newly recorded device log.
	NotifyAnalyticsUpdate(userID string, log devices.Log)
}

// TokenParser performs a local token check and returns the subject user ID.
type TokenParser interface {
	VerifyToken(token string) (string, error)
}

var _ devices.Service = (*coordinatorMiddleware)(nil)

type coordinatorMiddleware struct {
	svc      devices.Service
	store    cache.Store
	notifier Notifier
	tokens   TokenParser
	logger   logger.Logger
}

// NewCoordinatorMiddleware decorates the devices service so that every
// successful mutation invalidates the affected cache entries and notifies
// the owner's connected clients. Both side effects run concurrently in the
// background; failures are logged and dropped.
func NewCoordinatorMiddleware(svc devices.Service, store cache.Store, notifier Notifier, tokens TokenParser, logger logger.Logger) devices.Service {
	return &coordinatorMiddleware{
		svc:      svc,
		store:    store,
		notifier: notifier,
		tokens:   tokens,
		logger:   logger,
	}
}

func (cm *coordinatorMiddleware) CreateDevice(ctx context.Context, token string, device devices.Device) (devices.Device, error) {
	saved, err := cm.svc.CreateDevice(ctx, token, device)
	if err != nil {
		return saved, err
	}

	cm.invalidate(cache.MutationDeviceCreate, saved.OwnerID, saved.ID)
	go cm.notifier.NotifyDeviceUpdate(saved.OwnerID, ActionCreated, saved, "")

	return saved, nil
}

func (cm *coordinatorMiddleware) UpdateDevice(ctx context.Context, token string, device devices.Device) (devices.Device, error) {
	updated, err := cm.svc.UpdateDevice(ctx, token, device)
	if err != nil {
		return updated, err
	}

	cm.invalidate(cache.MutationDeviceUpdate, updated.OwnerID, updated.ID)
	go cm.notifier.NotifyDeviceUpdate(updated.OwnerID, ActionUpdated, updated, "")

	return updated, nil
}

func (cm *coordinatorMiddleware) RemoveDevice(ctx context.Context, token, id string) (devices.Device, error) {
	removed, err := cm.svc.RemoveDevice(ctx, token, id)
	if err != nil {
		return removed, err
	}

	cm.invalidate(cache.MutationDeviceRemove, removed.OwnerID, removed.ID)
	go cm.notifier.NotifyDeviceUpdate(removed.OwnerID, ActionDeleted, removed, "")

	return removed, nil
}

func (cm *coordinatorMiddleware) RecordHeartbeat(ctx context.Context, token, id, status string) (devices.Heartbeat, error) {
	hb, err := cm.svc.RecordHeartbeat(ctx, token, id, status)
	if err != nil {
		return hb, err
	}

	owner := hb.Device.OwnerID
	if hb.PreviousStatus != hb.Device.Status {
		cm.invalidate(cache.MutationDeviceStatusChange, owner, hb.Device.ID)
		go cm.notifier.NotifyDeviceUpdate(owner, ActionStatusChanged, hb.Device, hb.PreviousStatus)
	} else {
		cm.invalidate(cache.MutationDeviceHeartbeat, owner, hb.Device.ID)
	}
	go cm.notifier.NotifyDeviceHeartbeat(owner, hb.Device)

	return hb, nil
}

func (cm *coordinatorMiddleware) CreateDeviceLog(ctx context.Context, token string, log devices.Log) (devices.Log, error) {
	saved, err := cm.svc.CreateDeviceLog(ctx, token, log)
	if err != nil {
		return saved, err
	}

	// Logs carry no owner reference, so the owner is taken from the
	// already verified token without touching the store.
	owner, err := cm.tokens.VerifyToken(token)
	if err != nil {
		cm.logger.Warn(fmt.Sprintf("Failed to resolve owner for log %s side effects: %s", saved.ID, err))
		return saved, nil
	}

	cm.invalidate(cache.MutationDeviceLogCreate, owner, saved.DeviceID)
	go cm.notifier.NotifyAnalyticsUpdate(owner, saved)

	return saved, nil
}

func (cm *coordinatorMiddleware) DeactivateDevice(ctx context.Context, id string) (devices.Device, error) {
	device, err := cm.svc.DeactivateDevice(ctx, id)
	if err != nil {
		return device, err
	}

	cm.invalidate(cache.MutationDeviceUpdate, device.OwnerID, device.ID)
	go cm.notifier.NotifyDeviceUpdate(device.OwnerID, ActionStatusChanged, device, "")

	return device, nil
}

func (cm *coordinatorMiddleware) ListDevices(ctx context.Context, token string, pm devices.PageMetadata) (devices.DevicesPage, error) {
	return cm.svc.ListDevices(ctx, token, pm)
}

func (cm *coordinatorMiddleware) ViewDevice(ctx context.Context, token, id string) (devices.Device, error) {
	return cm.svc.ViewDevice(ctx, token, id)
}

func (cm *coordinatorMiddleware) ViewDeviceStats(ctx context.Context, token string) (devices.Stats, error) {
	return cm.svc.ViewDeviceStats(ctx, token)
}

func (cm *coordinatorMiddleware) ListDevicesByType(ctx context.Context, token string) ([]devices.TypeGroup, error) {
	return cm.svc.ListDevicesByType(ctx, token)
}

func (cm *coordinatorMiddleware) ListDeviceLogs(ctx context.Context, token, deviceID string, pm devices.LogsPageMetadata) (devices.LogsPage, error) {
	return cm.svc.ListDeviceLogs(ctx, token, deviceID, pm)
}

func (cm *coordinatorMiddleware) ViewDeviceUsage(ctx context.Context, token, deviceID, rng string) (devices.UsageSummary, error) {
	return cm.svc.ViewDeviceUsage(ctx, token, deviceID, rng)
}

func (cm *coordinatorMiddleware) ListInactiveDevices(ctx context.Context, threshold time.Duration) ([]devices.Device, error) {
	return cm.svc.ListInactiveDevices(ctx, threshold)
}

// invalidate clears the cache entries affected by the mutation in the
// background, detached from the request context.
func (cm *coordinatorMiddleware) invalidate(mutation, ownerID, deviceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		inv := cache.InvalidationFor(mutation, ownerID, deviceID)
		if !cache.Invalidate(ctx, cm.store, inv) {
			cm.logger.Warn(fmt.Sprintf("Failed to invalidate cache after %s for owner %s", mutation, ownerID))
		}
	}()
}
