// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devices

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/pkg/uuid"
	"github.com/DeviceHubLabs/devicehub/users"
)

// ErrInvalidUsageRange indicates an unrecognized usage analytics range.
var ErrInvalidUsageRange = errors.New("invalid usage range")

// Authenticator resolves a bearer token to a user identity.
type Authenticator interface {
	Identify(ctx context.Context, token string) (users.User, error)
}

// Service specifies an API that must be fulfilled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// CreateDevice adds a device owned by the identified user.
	CreateDevice(ctx context.Context, token string, device Device) (Device, error)

	// ListDevices retrieves a page of the identified user's devices
	// matching the provided filters.
	ListDevices(ctx context.Context, token string, pm PageMetadata) (DevicesPage, error)

	// ViewDevice retrieves the device with the given ID if it belongs to
	// the identified user.
	ViewDevice(ctx context.Context, token, id string) (Device, error)

	// UpdateDevice updates name, type, status and metadata of the device
	// with the given ID if it belongs to the identified user.
	UpdateDevice(ctx context.Context, token string, device Device) (Device, error)

	// RemoveDevice removes the device with the given ID if it belongs to
	// the identified user, and returns the removed device.
	RemoveDevice(ctx context.Context, token, id string) (Device, error)

	// RecordHeartbeat marks the device as seen now, optionally moving it
	// to a new status. The returned heartbeat carries the previous status.
	RecordHeartbeat(ctx context.Context, token, id, status string) (Heartbeat, error)

	// ViewDeviceStats retrieves per-status device counts of the
	// identified user.
	ViewDeviceStats(ctx context.Context, token string) (Stats, error)

	// ListDevicesByType retrieves the identified user's devices grouped
	// by type, ordered by descending count.
	ListDevicesByType(ctx context.Context, token string) ([]TypeGroup, error)

	// CreateDeviceLog records an event log entry for the device with the
	// given ID if it belongs to the identified user.
	CreateDeviceLog(ctx context.Context, token string, log Log) (Log, error)

	// ListDeviceLogs retrieves logs of the given device, newest first,
	// if the device belongs to the identified user.
	ListDeviceLogs(ctx context.Context, token, deviceID string, pm LogsPageMetadata) (LogsPage, error)

	// ViewDeviceUsage summarizes units consumed by the device over the
	// given range, if the device belongs to the identified user.
	ViewDeviceUsage(ctx context.Context, token, deviceID, rng string) (UsageSummary, error)

	// ListInactiveDevices retrieves devices whose last activity predates
	// now minus the threshold. It is used by background maintenance and
	// is not scoped to a single owner.
	ListInactiveDevices(ctx context.Context, threshold time.Duration) ([]Device, error)

	// DeactivateDevice marks the device as inactive regardless of
	// ownership. It is used by background maintenance.
	DeactivateDevice(ctx context.Context, id string) (Device, error)
}

var _ Service = (*devicesService)(nil)

type devicesService struct {
	auth       Authenticator
	devices    DeviceRepository
	logs       LogRepository
	store      cache.Store
	idProvider uuid.IDProvider
	logger     logger.Logger
}

// New instantiates the devices service implementation.
func New(auth Authenticator, devices DeviceRepository, logs LogRepository, store cache.Store, idp uuid.IDProvider, logger logger.Logger) Service {
	return &devicesService{
		auth:       auth,
		devices:    devices,
		logs:       logs,
		store:      store,
		idProvider: idp,
		logger:     logger,
	}
}

func (svc devicesService) CreateDevice(ctx context.Context, token string, device Device) (Device, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Device{}, err
	}

	if err := device.Validate(); err != nil {
		return Device{}, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	id, err := svc.idProvider.ID()
	if err != nil {
		return Device{}, err
	}

	device.ID = id
	device.OwnerID = user.ID
	if device.Status == "" {
		device.Status = StatusActive
	}
	device.CreatedAt = time.Now()
	device.UpdatedAt = device.CreatedAt

	if _, err := svc.devices.Save(ctx, device); err != nil {
		return Device{}, err
	}

	return device, nil
}

func (svc devicesService) ListDevices(ctx context.Context, token string, pm PageMetadata) (DevicesPage, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return DevicesPage{}, err
	}

	if pm.Type != "" && !ValidType(pm.Type) {
		return DevicesPage{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid device type filter"))
	}
	if pm.Status != "" && !ValidStatus(pm.Status) {
		return DevicesPage{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid device status filter"))
	}

	key := cache.NewKey(cache.DeviceList, user.ID, listFingerprint(pm))

	var page DevicesPage
	if svc.cacheGet(ctx, key, &page) {
		return page, nil
	}

	page, err = svc.devices.RetrieveByOwner(ctx, user.ID, pm)
	if err != nil {
		return DevicesPage{}, err
	}

	svc.cacheSet(ctx, key, page, cache.DeviceList.TTL())

	return page, nil
}

func (svc devicesService) ViewDevice(ctx context.Context, token, id string) (Device, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Device{}, err
	}

	key := cache.NewKey(cache.DeviceSingle, id, user.ID)

	var device Device
	if svc.cacheGet(ctx, key, &device) {
		return device, nil
	}

	device, err = svc.devices.RetrieveByID(ctx, id, user.ID)
	if err != nil {
		return Device{}, err
	}

	svc.cacheSet(ctx, key, device, cache.DeviceSingle.TTL())

	return device, nil
}

func (svc devicesService) UpdateDevice(ctx context.Context, token string, device Device) (Device, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Device{}, err
	}

	current, err := svc.devices.RetrieveByID(ctx, device.ID, user.ID)
	if err != nil {
		return Device{}, err
	}

	if device.Name != "" {
		current.Name = device.Name
	}
	if device.Type != "" {
		if !ValidType(device.Type) {
			return Device{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid device type"))
		}
		current.Type = device.Type
	}
	if device.Status != "" {
		if !ValidStatus(device.Status) {
			return Device{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid device status"))
		}
		current.Status = device.Status
	}
	if device.Metadata != nil {
		current.Metadata = device.Metadata
	}
	current.UpdatedAt = time.Now()

	if err := svc.devices.Update(ctx, current); err != nil {
		return Device{}, err
	}

	return current, nil
}

func (svc devicesService) RemoveDevice(ctx context.Context, token, id string) (Device, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Device{}, err
	}

	device, err := svc.devices.RetrieveByID(ctx, id, user.ID)
	if err != nil {
		return Device{}, err
	}

	if err := svc.devices.Remove(ctx, id, user.ID); err != nil {
		return Device{}, err
	}

	return device, nil
}

func (svc devicesService) RecordHeartbeat(ctx context.Context, token, id, status string) (Heartbeat, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Heartbeat{}, err
	}

	device, err := svc.devices.RetrieveByID(ctx, id, user.ID)
	if err != nil {
		return Heartbeat{}, err
	}

	prev := device.Status

	now := time.Now()
	device.LastActiveAt = &now
	device.UpdatedAt = now
	if status != "" {
		if !ValidStatus(status) {
			return Heartbeat{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid device status"))
		}
		device.Status = status
	}

	if err := svc.devices.Update(ctx, device); err != nil {
		return Heartbeat{}, err
	}

	return Heartbeat{Device: device, PreviousStatus: prev}, nil
}

func (svc devicesService) ViewDeviceStats(ctx context.Context, token string) (Stats, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Stats{}, err
	}

	key := cache.NewKey(cache.DeviceStats, user.ID)

	var stats Stats
	if svc.cacheGet(ctx, key, &stats) {
		return stats, nil
	}

	stats, err = svc.devices.RetrieveStats(ctx, user.ID)
	if err != nil {
		return Stats{}, err
	}

	// Zero-valued aggregates are cached too: an owner with no devices
	// produces a valid, cacheable answer.
	svc.cacheSet(ctx, key, stats, cache.DeviceStats.TTL())

	return stats, nil
}

func (svc devicesService) ListDevicesByType(ctx context.Context, token string) ([]TypeGroup, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return nil, err
	}

	key := cache.NewKey(cache.DevicesByType, user.ID)

	var groups []TypeGroup
	if svc.cacheGet(ctx, key, &groups) {
		return groups, nil
	}

	groups, err = svc.devices.RetrieveByType(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	svc.cacheSet(ctx, key, groups, cache.DevicesByType.TTL())

	return groups, nil
}

func (svc devicesService) CreateDeviceLog(ctx context.Context, token string, log Log) (Log, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return Log{}, err
	}

	if err := log.Validate(); err != nil {
		return Log{}, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	if _, err := svc.devices.RetrieveByID(ctx, log.DeviceID, user.ID); err != nil {
		return Log{}, err
	}

	id, err := svc.idProvider.ID()
	if err != nil {
		return Log{}, err
	}

	log.ID = id
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	if _, err := svc.logs.Save(ctx, log); err != nil {
		return Log{}, err
	}

	return log, nil
}

func (svc devicesService) ListDeviceLogs(ctx context.Context, token, deviceID string, pm LogsPageMetadata) (LogsPage, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return LogsPage{}, err
	}

	if pm.Event != "" && !ValidLogEvent(pm.Event) {
		return LogsPage{}, errors.Wrap(errors.ErrMalformedEntity, errors.New("invalid log event filter"))
	}

	if _, err := svc.devices.RetrieveByID(ctx, deviceID, user.ID); err != nil {
		return LogsPage{}, err
	}

	return svc.logs.RetrieveByDevice(ctx, deviceID, pm)
}

func (svc devicesService) ViewDeviceUsage(ctx context.Context, token, deviceID, rng string) (UsageSummary, error) {
	user, err := svc.auth.Identify(ctx, token)
	if err != nil {
		return UsageSummary{}, err
	}

	dur, ok := RangeDuration(rng)
	if !ok {
		return UsageSummary{}, errors.Wrap(errors.ErrMalformedEntity, ErrInvalidUsageRange)
	}

	if _, err := svc.devices.RetrieveByID(ctx, deviceID, user.ID); err != nil {
		return UsageSummary{}, err
	}

	fp := cache.Fingerprint(map[string]string{
		"device": deviceID,
		"range":  rng,
	})
	key := cache.NewKey(cache.Analytics, user.ID, fp)

	var summary UsageSummary
	if svc.cacheGet(ctx, key, &summary) {
		return summary, nil
	}

	to := time.Now()
	from := to.Add(-dur)

	total, count, err := svc.logs.SummarizeUsage(ctx, deviceID, from, to)
	if err != nil {
		return UsageSummary{}, err
	}

	summary = UsageSummary{
		DeviceID:   deviceID,
		Range:      rng,
		TotalUnits: total,
		Count:      count,
		From:       from,
		To:         to,
	}

	svc.cacheSet(ctx, key, summary, cache.Analytics.TTL())

	return summary, nil
}

func (svc devicesService) ListInactiveDevices(ctx context.Context, threshold time.Duration) ([]Device, error) {
	hours := strconv.FormatFloat(threshold.Hours(), 'f', -1, 64)
	key := cache.NewKey(cache.InactiveDevices, hours)

	var devs []Device
	if svc.cacheGet(ctx, key, &devs) {
		return devs, nil
	}

	devs, err := svc.devices.RetrieveInactive(ctx, time.Now().Add(-threshold))
	if err != nil {
		return nil, err
	}

	svc.cacheSet(ctx, key, devs, cache.InactiveDevices.TTL())

	return devs, nil
}

func (svc devicesService) DeactivateDevice(ctx context.Context, id string) (Device, error) {
	device, err := svc.devices.RetrieveAny(ctx, id)
	if err != nil {
		return Device{}, err
	}

	device.Status = StatusInactive
	device.UpdatedAt = time.Now()

	if err := svc.devices.Update(ctx, device); err != nil {
		return Device{}, err
	}

	return device, nil
}

// cacheGet reads and decodes a cached value. A corrupted entry is treated
// as a miss.
func (svc devicesService) cacheGet(ctx context.Context, key cache.Key, v interface{}) bool {
	val, ok := svc.store.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(val, v) == nil
}

func (svc devicesService) cacheSet(ctx context.Context, key cache.Key, v interface{}, ttl time.Duration) {
	if val, err := json.Marshal(v); err == nil {
		svc.store.Set(ctx, key, val, ttl)
	}
}

func listFingerprint(pm PageMetadata) string {
	return cache.Fingerprint(map[string]string{
		"offset": strconv.FormatUint(pm.Offset, 10),
		"limit":  strconv.FormatUint(pm.Limit, 10),
		"type":   pm.Type,
		"status": pm.Status,
	})
}
