// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import "github.com/DeviceHubLabs/devicehub/pkg/apiutil"

const (
	maxNameSize  = 254
	maxEmailSize = 254
	minPassSize  = 8
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req registerReq) validate() error {
	if req.Email == "" {
		return apiutil.ErrMissingEmail
	}
	if len(req.Email) > maxEmailSize {
		return apiutil.ErrEmailSize
	}
	if req.Name == "" || len(req.Name) > maxNameSize {
		return apiutil.ErrNameSize
	}
	if len(req.Password) < minPassSize {
		return apiutil.ErrMissingPass
	}
	return nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req loginReq) validate() error {
	if req.Email == "" {
		return apiutil.ErrMissingEmail
	}
	if req.Password == "" {
		return apiutil.ErrMissingPass
	}
	return nil
}

type viewProfileReq struct {
	token string
}

func (req viewProfileReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	return nil
}

type updateProfileReq struct {
	token string
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (req updateProfileReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.Name == "" || len(req.Name) > maxNameSize {
		return apiutil.ErrNameSize
	}
	if len(req.Email) > maxEmailSize {
		return apiutil.ErrEmailSize
	}
	return nil
}
