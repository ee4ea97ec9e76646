// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
)

var (
	_ apiutil.Response = (*registerRes)(nil)
	_ apiutil.Response = (*tokenRes)(nil)
	_ apiutil.Response = (*profileRes)(nil)
	_ apiutil.Response = (*updateRes)(nil)
)

type registerRes struct {
	ID string `json:"id"`
}

func (res registerRes) Code() int {
	return http.StatusCreated
}

func (res registerRes) Headers() map[string]string {
	return map[string]string{}
}

func (res registerRes) Empty() bool {
	return false
}

type tokenRes struct {
	Token string `json:"token"`
}

func (res tokenRes) Code() int {
	return http.StatusOK
}

func (res tokenRes) Headers() map[string]string {
	return map[string]string{}
}

func (res tokenRes) Empty() bool {
	return false
}

type profileRes struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (res profileRes) Code() int {
	return http.StatusOK
}

func (res profileRes) Headers() map[string]string {
	return map[string]string{}
}

func (res profileRes) Empty() bool {
	return false
}

type updateRes struct{}

func (res updateRes) Code() int {
	return http.StatusOK
}

func (res updateRes) Headers() map[string]string {
	return map[string]string{}
}

func (res updateRes) Empty() bool {
	return true
}
