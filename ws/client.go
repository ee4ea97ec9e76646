// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client wraps a WebSocket connection of a single authenticated user. It
// carries the identity snapshot taken during the handshake and tracks when
// the connection was established and when the client last sent a frame.
// Writes are serialized since gorilla connections allow one concurrent
// writer only.
type Client struct {
	user        users.User
	connectedAt time.Time

	mu   sync.Mutex
	conn *websocket.Conn

	actMu        sync.Mutex
	lastActivity time.Time

	subMu         sync.Mutex
	subscriptions map[string]bool
}

// NewClient instantiates a client over the given connection.
func NewClient(conn *websocket.Conn, user users.User) *Client {
	now := time.Now()
	return &Client{
		user:          user,
		connectedAt:   now,
		lastActivity:  now,
		conn:          conn,
		subscriptions: make(map[string]bool),
	}
}

// UserID returns the ID of the user the connection belongs to.
func (c *Client) UserID() string {
	return c.user.ID
}

// User returns the identity snapshot taken during the handshake.
func (c *Client) User() users.User {
	return c.user
}

// ConnectedAt returns when the connection was established.
func (c *Client) ConnectedAt() time.Time {
	return c.connectedAt
}

// Touch records client activity. Called for every frame received.
func (c *Client) Touch() {
	c.actMu.Lock()
	defer c.actMu.Unlock()

	c.lastActivity = time.Now()
}

// LastActivityAt returns when the client last sent a frame.
func (c *Client) LastActivityAt() time.Time {
	c.actMu.Lock()
	defer c.actMu.Unlock()

	return c.lastActivity
}

// Send marshals and writes a single event frame.
func (c *Client) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Ping writes a WebSocket-level ping control frame.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a close frame with the given code and reason, then closes
// the underlying connection.
func (c *Client) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.conn.Close()
}

// Subscribe records the client's interest in a single device.
func (c *Client) Subscribe(deviceID string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.subscriptions[deviceID] = true
}

// Subscribed reports whether the client subscribed to the given device.
func (c *Client) Subscribed(deviceID string) bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	return c.subscriptions[deviceID]
}
