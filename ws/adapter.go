// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package ws provides the real-time event fan-out over WebSocket. It keeps
// a registry of authenticated client connections per user and pushes device
// events to every connection of the affected owner.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/gorilla/websocket"
)

// Stats describes the current fan-out load.
type Stats struct {
	TotalConnections   uint64            `json:"total_connections"`
	ActiveUsers        uint64            `json:"active_users"`
	ConnectionsPerUser map[string]uint64 `json:"connections_per_user"`
}

// Service specifies the WebSocket fan-out API.
type Service interface {
	// Register adds a client connection to the user's connection set and
	// confirms it with a connected frame.
	Register(userID string, client *Client)

	// Unregister removes a client connection from the user's connection
	// set. The last removed connection clears the user's entry.
	Unregister(userID string, client *Client)

	// HandleMessage processes a single frame received from a client.
	HandleMessage(client *Client, payload []byte)

	// BroadcastToUser pushes the event to every connection of the user
	// and returns the number of connections reached.
	BroadcastToUser(userID string, ev Event) int

	// BroadcastToAll pushes the event to every registered connection,
	// skipping the excluded user's connections when excludeUserID is set.
	BroadcastToAll(ev Event, excludeUserID string)

	// NotifyDeviceUpdate reports a device lifecycle change to the owner.
	NotifyDeviceUpdate(userID, action string, device devices.Device, previousStatus string)

	// NotifyDeviceHeartbeat reports fresh device activity to the owner.
	NotifyDeviceHeartbeat(userID string, device devices.Device)

	// NotifyAnalyticsUpdate reports a new device log to the owner.
	NotifyAnalyticsUpdate(userID string, log devices.Log)

	// Stats returns the current fan-out load.
	Stats() Stats

	// CloseAll closes every registered connection with a going-away frame.
	// Used during graceful shutdown.
	CloseAll()
}

var _ Service = (*adapterService)(nil)

type adapterService struct {
	registry *registry
	logger   logger.Logger
}

// New instantiates the WebSocket fan-out service implementation.
func New(logger logger.Logger) Service {
	return &adapterService{
		registry: newRegistry(),
		logger:   logger,
	}
}

func (svc *adapterService) Register(userID string, client *Client) {
	svc.registry.add(userID, client)

	ev := newEvent(EventConnected)
	ev.Message = "Connected to device events stream"
	if err := client.Send(ev); err != nil {
		svc.logger.Warn(fmt.Sprintf("Failed to confirm connection for user %s: %s", userID, err))
	}
}

func (svc *adapterService) Unregister(userID string, client *Client) {
	svc.registry.remove(userID, client)
}

func (svc *adapterService) HandleMessage(client *Client, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		svc.send(client, newErrorEvent("invalid message format"))
		return
	}

	switch msg.Type {
	case MessagePing:
		svc.send(client, newEvent(EventPong))
	case MessageSubscribeDevice:
		if msg.DeviceID == "" {
			svc.send(client, newErrorEvent("missing device id"))
			return
		}
		client.Subscribe(msg.DeviceID)
		ev := newEvent(EventSubscribed)
		ev.DeviceID = msg.DeviceID
		svc.send(client, ev)
	default:
		svc.send(client, newErrorEvent("unknown message type"))
	}
}

func (svc *adapterService) BroadcastToUser(userID string, ev Event) int {
	sent := 0
	for _, c := range svc.registry.snapshot(userID) {
		if err := c.Send(ev); err != nil {
			svc.logger.Warn(fmt.Sprintf("Failed to push %s event to user %s: %s", ev.Type, userID, err))
			continue
		}
		sent++
	}
	return sent
}

func (svc *adapterService) BroadcastToAll(ev Event, excludeUserID string) {
	for _, c := range svc.registry.snapshotAll() {
		if excludeUserID != "" && c.UserID() == excludeUserID {
			continue
		}
		if err := c.Send(ev); err != nil {
			svc.logger.Warn(fmt.Sprintf("Failed to push %s event to user %s: %s", ev.Type, c.UserID(), err))
		}
	}
}

func (svc *adapterService) NotifyDeviceUpdate(userID, action string, device devices.Device, previousStatus string) {
	ev := newEvent(EventDeviceUpdate)
	ev.Action = action
	ev.Device = &device
	ev.PreviousStatus = previousStatus
	svc.BroadcastToUser(userID, ev)
}

func (svc *adapterService) NotifyDeviceHeartbeat(userID string, device devices.Device) {
	ev := newEvent(EventDeviceHeartbeat)
	ev.DeviceID = device.ID
	ev.Status = device.Status
	ev.LastActiveAt = device.LastActiveAt
	svc.BroadcastToUser(userID, ev)
}

func (svc *adapterService) NotifyAnalyticsUpdate(userID string, log devices.Log) {
	ev := newEvent(EventAnalyticsUpdate)
	ev.DeviceID = log.DeviceID
	ev.Log = &log
	svc.BroadcastToUser(userID, ev)
}

func (svc *adapterService) Stats() Stats {
	return svc.registry.stats()
}

func (svc *adapterService) CloseAll() {
	for _, c := range svc.registry.snapshotAll() {
		if err := c.Close(websocket.CloseNormalClosure, "server shutting down"); err != nil {
			svc.logger.Warn(fmt.Sprintf("Failed to close connection of user %s: %s", c.UserID(), err))
		}
		svc.registry.remove(c.UserID(), c)
	}
}

func (svc *adapterService) send(client *Client, ev Event) {
	if err := client.Send(ev); err != nil {
		svc.logger.Warn(fmt.Sprintf("Failed to push %s event to user %s: %s", ev.Type, client.UserID(), err))
	}
}
