// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/users"
)

var _ devices.Authenticator = (*authenticatorMock)(nil)

type authenticatorMock struct {
	users map[string]users.User
}

// NewAuthenticator creates a mock resolving tokens against the given
// token to user mapping.
func NewAuthenticator(us map[string]users.User) devices.Authenticator {
	return &authenticatorMock{users: us}
}

func (am *authenticatorMock) Identify(_ context.Context, token string) (users.User, error) {
	if u, ok := am.users[token]; ok {
		return u, nil
	}

	return users.User{}, errors.ErrAuthentication
}
