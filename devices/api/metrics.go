// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/go-kit/kit/metrics"
)

var _ devices.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     devices.Service
}

// MetricsMiddleware instruments the devices service by tracking request count
// and latency.
func MetricsMiddleware(svc devices.Service, counter metrics.Counter, latency metrics.Histogram) devices.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) CreateDevice(ctx context.Context, token string, device devices.Device) (devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "create_device").Add(1)
		mm.latency.With("method", "create_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateDevice(ctx, token, device)
}

func (mm *metricsMiddleware) ListDevices(ctx context.Context, token string, pm devices.PageMetadata) (devices.DevicesPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_devices").Add(1)
		mm.latency.With("method", "list_devices").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListDevices(ctx, token, pm)
}

func (mm *metricsMiddleware) ViewDevice(ctx context.Context, token, id string) (devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "view_device").Add(1)
		mm.latency.With("method", "view_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ViewDevice(ctx, token, id)
}

func (mm *metricsMiddleware) UpdateDevice(ctx context.Context, token string, device devices.Device) (devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "update_device").Add(1)
		mm.latency.With("method", "update_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateDevice(ctx, token, device)
}

func (mm *metricsMiddleware) RemoveDevice(ctx context.Context, token, id string) (devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "remove_device").Add(1)
		mm.latency.With("method", "remove_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RemoveDevice(ctx, token, id)
}

func (mm *metricsMiddleware) RecordHeartbeat(ctx context.Context, token, id, status string) (devices.Heartbeat, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "record_heartbeat").Add(1)
		mm.latency.With("method", "record_heartbeat").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RecordHeartbeat(ctx, token, id, status)
}

func (mm *metricsMiddleware) ViewDeviceStats(ctx context.Context, token string) (devices.Stats, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "view_device_stats").Add(1)
		mm.latency.With("method", "view_device_stats").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ViewDeviceStats(ctx, token)
}

func (mm *metricsMiddleware) ListDevicesByType(ctx context.Context, token string) ([]devices.TypeGroup, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_devices_by_type").Add(1)
		mm.latency.With("method", "list_devices_by_type").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListDevicesByType(ctx, token)
}

func (mm *metricsMiddleware) CreateDeviceLog(ctx context.Context, token string, deviceLog devices.Log) (devices.Log, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "create_device_log").Add(1)
		mm.latency.With("method", "create_device_log").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateDeviceLog(ctx, token, deviceLog)
}

func (mm *metricsMiddleware) ListDeviceLogs(ctx context.Context, token, deviceID string, pm devices.LogsPageMetadata) (devices.LogsPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_device_logs").Add(1)
		mm.latency.With("method", "list_device_logs").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListDeviceLogs(ctx, token, deviceID, pm)
}

func (mm *metricsMiddleware) ViewDeviceUsage(ctx context.Context, token, deviceID, rng string) (devices.UsageSummary, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "view_device_usage").Add(1)
		mm.latency.With("method", "view_device_usage").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ViewDeviceUsage(ctx, token, deviceID, rng)
}

func (mm *metricsMiddleware) ListInactiveDevices(ctx context.Context, threshold time.Duration) ([]devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_inactive_devices").Add(1)
		mm.latency.With("method", "list_inactive_devices").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListInactiveDevices(ctx, threshold)
}

func (mm *metricsMiddleware) DeactivateDevice(ctx context.Context, id string) (devices.Device, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "deactivate_device").Add(1)
		mm.latency.With("method", "deactivate_device").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DeactivateDevice(ctx, id)
}
