// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package ws

import (
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
)

// Event types pushed to connected clients.
const (
	EventConnected       = "connected"
	EventPong            = "pong"
	EventSubscribed      = "subscribed"
	EventError           = "error"
	EventDeviceUpdate    = "device_update"
	EventDeviceHeartbeat = "device_heartbeat"
	EventAnalyticsUpdate = "analytics_update"
)

// Message types accepted from clients.
const (
	MessagePing            = "ping"
	MessageSubscribeDevice = "subscribe_device"
)

// Event is a single frame pushed to a client. Every frame carries its type
// and an emission timestamp; the remaining fields depend on the type.
type Event struct {
	Type           string          `json:"type"`
	Message        string          `json:"message,omitempty"`
	Action         string          `json:"action,omitempty"`
	Device         *devices.Device `json:"device,omitempty"`
	DeviceID       string          `json:"deviceId,omitempty"`
	Status         string          `json:"status,omitempty"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	LastActiveAt   *time.Time      `json:"lastActiveAt,omitempty"`
	Log            *devices.Log    `json:"log,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Message is a single frame received from a client.
type Message struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceId,omitempty"`
}

func newEvent(typ string) Event {
	return Event{Type: typ, Timestamp: time.Now()}
}

func newErrorEvent(msg string) Event {
	ev := newEvent(EventError)
	ev.Message = msg
	return ev
}
