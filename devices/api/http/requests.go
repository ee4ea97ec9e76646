// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
)

const maxLimitSize = 100

type createDeviceReq struct {
	token    string
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Status   string                 `json:"status,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (req createDeviceReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.Name == "" {
		return apiutil.ErrNameSize
	}
	if !devices.ValidType(req.Type) {
		return apiutil.ErrInvalidDeviceType
	}
	if req.Status != "" && !devices.ValidStatus(req.Status) {
		return apiutil.ErrInvalidDeviceStatus
	}
	return nil
}

type listDevicesReq struct {
	token string
	pm    devices.PageMetadata
}

func (req listDevicesReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.pm.Limit > maxLimitSize {
		return apiutil.ErrLimitSize
	}
	if req.pm.Type != "" && !devices.ValidType(req.pm.Type) {
		return apiutil.ErrInvalidDeviceType
	}
	if req.pm.Status != "" && !devices.ValidStatus(req.pm.Status) {
		return apiutil.ErrInvalidDeviceStatus
	}
	return nil
}

type viewDeviceReq struct {
	token string
	id    string
}

func (req viewDeviceReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	return nil
}

type updateDeviceReq struct {
	token    string
	id       string
	Name     string                 `json:"name,omitempty"`
	Type     string                 `json:"type,omitempty"`
	Status   string                 `json:"status,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (req updateDeviceReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	if req.Type != "" && !devices.ValidType(req.Type) {
		return apiutil.ErrInvalidDeviceType
	}
	if req.Status != "" && !devices.ValidStatus(req.Status) {
		return apiutil.ErrInvalidDeviceStatus
	}
	return nil
}

type heartbeatReq struct {
	token  string
	id     string
	Status string `json:"status,omitempty"`
}

func (req heartbeatReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	if req.Status != "" && !devices.ValidStatus(req.Status) {
		return apiutil.ErrInvalidDeviceStatus
	}
	return nil
}

type ownerReq struct {
	token string
}

func (req ownerReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	return nil
}

type createLogReq struct {
	token    string
	id       string
	Event    string                 `json:"event"`
	Value    interface{}            `json:"value,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Ts       *time.Time             `json:"timestamp,omitempty"`
}

func (req createLogReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	if !devices.ValidLogEvent(req.Event) {
		return apiutil.ErrInvalidLogEvent
	}
	return nil
}

type listLogsReq struct {
	token string
	id    string
	pm    devices.LogsPageMetadata
}

func (req listLogsReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	if req.pm.Limit > maxLimitSize {
		return apiutil.ErrLimitSize
	}
	if req.pm.Event != "" && !devices.ValidLogEvent(req.pm.Event) {
		return apiutil.ErrInvalidLogEvent
	}
	return nil
}

type usageReq struct {
	token string
	id    string
	rng   string
}

func (req usageReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingDeviceID
	}
	if _, ok := devices.RangeDuration(req.rng); !ok {
		return apiutil.ErrInvalidQueryParams
	}
	return nil
}
