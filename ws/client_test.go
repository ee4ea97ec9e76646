// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package ws_test

import (
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/DeviceHubLabs/devicehub/ws"
	"github.com/stretchr/testify/assert"
)

func TestClientIdentitySnapshot(t *testing.T) {
	user := users.User{ID: "user-1", Email: "owner@example.com", IsActive: true}
	c := ws.NewClient(nil, user)

	assert.Equal(t, user.ID, c.UserID())
	assert.Equal(t, user, c.User())
	assert.False(t, c.ConnectedAt().IsZero())
	assert.False(t, c.ConnectedAt().After(time.Now()))
}

func TestClientActivityTracking(t *testing.T) {
	c := ws.NewClient(nil, users.User{ID: "user-1"})

	first := c.LastActivityAt()
	assert.False(t, first.IsZero())

	time.Sleep(10 * time.Millisecond)
	c.Touch()
	assert.True(t, c.LastActivityAt().After(first))
}
