// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/go-kit/kit/endpoint"
)

func createDeviceEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(createDeviceReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		device := devices.Device{
			Name:     req.Name,
			Type:     req.Type,
			Status:   req.Status,
			Metadata: req.Metadata,
		}

		saved, err := svc.CreateDevice(ctx, req.token, device)
		if err != nil {
			return nil, err
		}

		return deviceRes{Device: saved, created: true}, nil
	}
}

func listDevicesEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listDevicesReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		page, err := svc.ListDevices(ctx, req.token, req.pm)
		if err != nil {
			return nil, err
		}

		return devicesPageRes{DevicesPage: page}, nil
	}
}

func viewDeviceEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(viewDeviceReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		device, err := svc.ViewDevice(ctx, req.token, req.id)
		if err != nil {
			return nil, err
		}

		return deviceRes{Device: device}, nil
	}
}

func updateDeviceEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateDeviceReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		device := devices.Device{
			ID:       req.id,
			Name:     req.Name,
			Type:     req.Type,
			Status:   req.Status,
			Metadata: req.Metadata,
		}

		updated, err := svc.UpdateDevice(ctx, req.token, device)
		if err != nil {
			return nil, err
		}

		return deviceRes{Device: updated}, nil
	}
}

func removeDeviceEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(viewDeviceReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if _, err := svc.RemoveDevice(ctx, req.token, req.id); err != nil {
			return nil, err
		}

		return removeRes{}, nil
	}
}

func heartbeatEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(heartbeatReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		hb, err := svc.RecordHeartbeat(ctx, req.token, req.id, req.Status)
		if err != nil {
			return nil, err
		}

		return deviceRes{Device: hb.Device}, nil
	}
}

func statsEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ownerReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		stats, err := svc.ViewDeviceStats(ctx, req.token)
		if err != nil {
			return nil, err
		}

		return statsRes{Stats: stats}, nil
	}
}

func byTypeEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ownerReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		groups, err := svc.ListDevicesByType(ctx, req.token)
		if err != nil {
			return nil, err
		}

		return typeGroupsRes{Groups: groups}, nil
	}
}

func createLogEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(createLogReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		deviceLog := devices.Log{
			DeviceID: req.id,
			Event:    req.Event,
			Value:    req.Value,
			Metadata: req.Metadata,
		}
		if req.Ts != nil {
			deviceLog.Timestamp = *req.Ts
		} else {
			deviceLog.Timestamp = time.Now()
		}

		saved, err := svc.CreateDeviceLog(ctx, req.token, deviceLog)
		if err != nil {
			return nil, err
		}

		return logRes{Log: saved}, nil
	}
}

func listLogsEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listLogsReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		page, err := svc.ListDeviceLogs(ctx, req.token, req.id, req.pm)
		if err != nil {
			return nil, err
		}

		return logsPageRes{LogsPage: page}, nil
	}
}

func usageEndpoint(svc devices.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(usageReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		summary, err := svc.ViewDeviceUsage(ctx, req.token, req.id, req.rng)
		if err != nil {
			return nil, err
		}

		return usageRes{UsageSummary: summary}, nil
	}
}
