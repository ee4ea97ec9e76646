// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	log "github.com/DeviceHubLabs/devicehub/logger"
)

var _ devices.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger log.Logger
	svc    devices.Service
}

// LoggingMiddleware adds logging facilities to the devices service.
func LoggingMiddleware(svc devices.Service, logger log.Logger) devices.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) CreateDevice(ctx context.Context, token string, device devices.Device) (saved devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method create_device for device %s took %s to complete", saved.ID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.CreateDevice(ctx, token, device)
}

func (lm *loggingMiddleware) ListDevices(ctx context.Context, token string, pm devices.PageMetadata) (page devices.DevicesPage, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method list_devices took %s to complete", time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ListDevices(ctx, token, pm)
}

func (lm *loggingMiddleware) ViewDevice(ctx context.Context, token, id string) (device devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method view_device for device %s took %s to complete", id, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ViewDevice(ctx, token, id)
}

func (lm *loggingMiddleware) UpdateDevice(ctx context.Context, token string, device devices.Device) (updated devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method update_device for device %s took %s to complete", device.ID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.UpdateDevice(ctx, token, device)
}

func (lm *loggingMiddleware) RemoveDevice(ctx context.Context, token, id string) (removed devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method remove_device for device %s took %s to complete", id, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.RemoveDevice(ctx, token, id)
}

func (lm *loggingMiddleware) RecordHeartbeat(ctx context.Context, token, id, status string) (hb devices.Heartbeat, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method record_heartbeat for device %s took %s to complete", id, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.RecordHeartbeat(ctx, token, id, status)
}

func (lm *loggingMiddleware) ViewDeviceStats(ctx context.Context, token string) (stats devices.Stats, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method view_device_stats took %s to complete", time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ViewDeviceStats(ctx, token)
}

func (lm *loggingMiddleware) ListDevicesByType(ctx context.Context, token string) (groups []devices.TypeGroup, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method list_devices_by_type took %s to complete", time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ListDevicesByType(ctx, token)
}

func (lm *loggingMiddleware) CreateDeviceLog(ctx context.Context, token string, deviceLog devices.Log) (saved devices.Log, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method create_device_log for device %s took %s to complete", deviceLog.DeviceID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.CreateDeviceLog(ctx, token, deviceLog)
}

func (lm *loggingMiddleware) ListDeviceLogs(ctx context.Context, token, deviceID string, pm devices.LogsPageMetadata) (page devices.LogsPage, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method list_device_logs for device %s took %s to complete", deviceID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ListDeviceLogs(ctx, token, deviceID, pm)
}

func (lm *loggingMiddleware) ViewDeviceUsage(ctx context.Context, token, deviceID, rng string) (summary devices.UsageSummary, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method view_device_usage for device %s took %s to complete", deviceID, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ViewDeviceUsage(ctx, token, deviceID, rng)
}

func (lm *loggingMiddleware) ListInactiveDevices(ctx context.Context, threshold time.Duration) (devs []devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method list_inactive_devices took %s to complete", time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.ListInactiveDevices(ctx, threshold)
}

func (lm *loggingMiddleware) DeactivateDevice(ctx context.Context, id string) (device devices.Device, err error) {
	defer func(begin time.Time) {
		message := fmt.Sprintf("Method deactivate_device for device %s took %s to complete", id, time.Since(begin))
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("%s with error: %s.", message, err))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s without errors.", message))
	}(time.Now())

	return lm.svc.DeactivateDevice(ctx, id)
}
