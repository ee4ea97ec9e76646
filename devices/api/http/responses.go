// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
)

var (
	_ apiutil.Response = (*deviceRes)(nil)
	_ apiutil.Response = (*devicesPageRes)(nil)
	_ apiutil.Response = (*removeRes)(nil)
	_ apiutil.Response = (*statsRes)(nil)
	_ apiutil.Response = (*typeGroupsRes)(nil)
	_ apiutil.Response = (*logRes)(nil)
	_ apiutil.Response = (*logsPageRes)(nil)
	_ apiutil.Response = (*usageRes)(nil)
)

type deviceRes struct {
	devices.Device
	created bool
}

func (res deviceRes) Code() int {
	if res.created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (res deviceRes) Headers() map[string]string {
	return map[string]string{}
}

func (res deviceRes) Empty() bool {
	return false
}

type devicesPageRes struct {
	devices.DevicesPage
}

func (res devicesPageRes) Code() int {
	return http.StatusOK
}

func (res devicesPageRes) Headers() map[string]string {
	return map[string]string{}
}

func (res devicesPageRes) Empty() bool {
	return false
}

type removeRes struct{}

func (res removeRes) Code() int {
	return http.StatusNoContent
}

func (res removeRes) Headers() map[string]string {
	return map[string]string{}
}

func (res removeRes) Empty() bool {
	return true
}

type statsRes struct {
	devices.Stats
}

func (res statsRes) Code() int {
	return http.StatusOK
}

func (res statsRes) Headers() map[string]string {
	return map[string]string{}
}

func (res statsRes) Empty() bool {
	return false
}

type typeGroupsRes struct {
	Groups []devices.TypeGroup `json:"groups"`
}

func (res typeGroupsRes) Code() int {
	return http.StatusOK
}

func (res typeGroupsRes) Headers() map[string]string {
	return map[string]string{}
}

func (res typeGroupsRes) Empty() bool {
	return false
}

type logRes struct {
	devices.Log
}

func (res logRes) Code() int {
	return http.StatusCreated
}

func (res logRes) Headers() map[string]string {
	return map[string]string{}
}

func (res logRes) Empty() bool {
	return false
}

type logsPageRes struct {
	devices.LogsPage
}

func (res logsPageRes) Code() int {
	return http.StatusOK
}

func (res logsPageRes) Headers() map[string]string {
	return map[string]string{}
}

func (res logsPageRes) Empty() bool {
	return false
}

type usageRes struct {
	devices.UsageSummary
}

func (res usageRes) Code() int {
	return http.StatusOK
}

func (res usageRes) Headers() map[string]string {
	return map[string]string{}
}

func (res usageRes) Empty() bool {
	return false
}
