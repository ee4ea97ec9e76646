// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/DeviceHubLabs/devicehub/ws"
	"github.com/DeviceHubLabs/devicehub/ws/api"
	"github.com/go-zoo/bone"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	token      = "token-1"
	otherToken = "token-2"
	// Verifies but resolves to no account, as after an account removal.
	orphanToken = "token-orphan"
)

var (
	owner      = users.User{ID: "user-1", Email: "owner@example.com", IsActive: true}
	otherOwner = users.User{ID: "user-2", Email: "other@example.com", IsActive: true}
)

type authnMock struct{}

func (authnMock) VerifyToken(token string) (string, error) {
	switch token {
	case "token-1":
		return owner.ID, nil
	case "token-2":
		return otherOwner.ID, nil
	case orphanToken:
		return "user-gone", nil
	}
	return "", errors.ErrAuthentication
}

func (authnMock) Identify(_ context.Context, token string) (users.User, error) {
	switch token {
	case "token-1":
		return owner, nil
	case "token-2":
		return otherOwner, nil
	}
	return users.User{}, errors.ErrAuthentication
}

// gatedAuthn blocks identity lookups until released, simulating a slow
// user store during the handshake.
type gatedAuthn struct {
	authnMock
	release chan struct{}
}

func (g *gatedAuthn) Identify(ctx context.Context, token string) (users.User, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return users.User{}, ctx.Err()
	}
	return g.authnMock.Identify(ctx, token)
}

func newServer(t *testing.T) (*httptest.Server, ws.Service) {
	t.Helper()

	svc := ws.New(logger.NewMock())
	handler := api.MakeHandler(bone.New(), svc, authnMock{}, logger.NewMock())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := fmt.Sprintf("%s/ws?token=%s", strings.Replace(srv.URL, "http", "ws", 1), token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev ws.Event
	require.NoError(t, json.Unmarshal(payload, &ev))

	return ev
}

func TestHandshakeRejectsUnauthenticated(t *testing.T) {
	srv, _ := newServer(t)

	cases := []struct {
		desc string
		url  string
	}{
		{
			desc: "missing token",
			url:  fmt.Sprintf("%s/ws", strings.Replace(srv.URL, "http", "ws", 1)),
		},
		{
			desc: "invalid token",
			url:  fmt.Sprintf("%s/ws?token=garbage", strings.Replace(srv.URL, "http", "ws", 1)),
		},
	}

	for _, tc := range cases {
		conn, resp, err := websocket.DefaultDialer.Dial(tc.url, nil)
		require.Error(t, err, tc.desc)
		require.Nil(t, conn, tc.desc)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.desc)
	}
}

func TestHandshakeConfirmsConnection(t *testing.T) {
	srv, _ := newServer(t)
	conn := dial(t, srv, token)

	ev := readEvent(t, conn)
	assert.Equal(t, ws.EventConnected, ev.Type)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestHandshakeRegistersOnlyAfterIdentity(t *testing.T) {
	svc := ws.New(logger.NewMock())
	auth := &gatedAuthn{release: make(chan struct{})}
	srv := httptest.NewServer(api.MakeHandler(bone.New(), svc, auth, logger.NewMock()))
	t.Cleanup(srv.Close)

	conn := dial(t, srv, token)

	// Until the lookup confirms the account the connection is invisible:
	// no registry entry, and broadcasts cannot reach it.
	assert.Never(t, func() bool {
		return svc.Stats().TotalConnections != 0
	}, 200*time.Millisecond, 10*time.Millisecond, "pending connections must stay out of the registry")
	assert.Zero(t, svc.BroadcastToUser(owner.ID, ws.Event{Type: ws.EventDeviceUpdate}))

	close(auth.release)

	// The first frame the client ever sees is the connection confirmation.
	ev := readEvent(t, conn)
	assert.Equal(t, ws.EventConnected, ev.Type)

	require.Eventually(t, func() bool {
		return svc.Stats().TotalConnections == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHandshakeClosesUnknownAccount(t *testing.T) {
	srv, _ := newServer(t)
	conn := dial(t, srv, orphanToken)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeErr, ok := err.(*websocket.CloseError)
			require.True(t, ok, "connection must be closed with a close frame, got %s", err)
			assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
			return
		}
	}
}

func TestClientMessages(t *testing.T) {
	srv, _ := newServer(t)
	conn := dial(t, srv, token)
	readEvent(t, conn)

	cases := []struct {
		desc     string
		payload  string
		wantType string
	}{
		{
			desc:     "ping is answered with pong",
			payload:  `{"type":"ping"}`,
			wantType: ws.EventPong,
		},
		{
			desc:     "device subscription is acknowledged",
			payload:  `{"type":"subscribe_device","deviceId":"dev-1"}`,
			wantType: ws.EventSubscribed,
		},
		{
			desc:     "subscription without device id is rejected",
			payload:  `{"type":"subscribe_device"}`,
			wantType: ws.EventError,
		},
		{
			desc:     "unknown message type is rejected",
			payload:  `{"type":"self_destruct"}`,
			wantType: ws.EventError,
		},
		{
			desc:     "malformed payload is rejected",
			payload:  `{"type":`,
			wantType: ws.EventError,
		},
	}

	for _, tc := range cases {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.payload)), tc.desc)
		ev := readEvent(t, conn)
		assert.Equal(t, tc.wantType, ev.Type, tc.desc)
	}
}

func TestBroadcastReachesAllUserConnections(t *testing.T) {
	srv, svc := newServer(t)

	first := dial(t, srv, token)
	second := dial(t, srv, token)
	other := dial(t, srv, otherToken)
	readEvent(t, first)
	readEvent(t, second)
	readEvent(t, other)

	dev := devices.Device{ID: "dev-1", OwnerID: owner.ID, Name: "lamp", Type: devices.TypeLight, Status: devices.StatusActive}
	svc.NotifyDeviceUpdate(owner.ID, "updated", dev, "")

	for _, conn := range []*websocket.Conn{first, second} {
		ev := readEvent(t, conn)
		assert.Equal(t, ws.EventDeviceUpdate, ev.Type)
		require.NotNil(t, ev.Device)
		assert.Equal(t, dev.ID, ev.Device.ID)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other users must not receive the event")
}

func TestBroadcastToAllExcludesUser(t *testing.T) {
	srv, svc := newServer(t)

	ownerConn := dial(t, srv, token)
	otherConn := dial(t, srv, otherToken)
	readEvent(t, ownerConn)
	readEvent(t, otherConn)

	svc.BroadcastToAll(ws.Event{Type: ws.EventDeviceUpdate}, owner.ID)

	ev := readEvent(t, otherConn)
	assert.Equal(t, ws.EventDeviceUpdate, ev.Type)

	require.NoError(t, ownerConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := ownerConn.ReadMessage()
	assert.Error(t, err, "the excluded user must not receive the event")
}

func TestHeartbeatFrameFieldNames(t *testing.T) {
	srv, svc := newServer(t)
	conn := dial(t, srv, token)
	readEvent(t, conn)

	now := time.Now()
	svc.NotifyDeviceHeartbeat(owner.ID, devices.Device{ID: "dev-1", OwnerID: owner.ID, Status: devices.StatusActive, LastActiveAt: &now})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "deviceId")
	assert.Contains(t, raw, "lastActiveAt")
	assert.NotContains(t, raw, "device_id")
}

func TestBroadcastToUnknownUserIsNoop(t *testing.T) {
	_, svc := newServer(t)

	sent := svc.BroadcastToUser("user-unknown", ws.Event{Type: ws.EventDeviceUpdate})
	assert.Zero(t, sent)
}

func TestStatsTrackConnections(t *testing.T) {
	srv, svc := newServer(t)

	first := dial(t, srv, token)
	dial(t, srv, token)
	dial(t, srv, otherToken)

	require.Eventually(t, func() bool {
		return svc.Stats().TotalConnections == 3
	}, time.Second, 10*time.Millisecond)

	stats := svc.Stats()
	assert.Equal(t, uint64(2), stats.ActiveUsers)
	assert.Equal(t, uint64(2), stats.ConnectionsPerUser[owner.ID])
	assert.Equal(t, uint64(1), stats.ConnectionsPerUser[otherOwner.ID])

	first.Close()

	require.Eventually(t, func() bool {
		return svc.Stats().TotalConnections == 2
	}, time.Second, 10*time.Millisecond, "closed connections must leave the registry")
}

func TestLastConnectionClearsUserEntry(t *testing.T) {
	srv, svc := newServer(t)

	conn := dial(t, srv, token)
	readEvent(t, conn)
	conn.Close()

	require.Eventually(t, func() bool {
		stats := svc.Stats()
		_, present := stats.ConnectionsPerUser[owner.ID]
		return stats.ActiveUsers == 0 && !present
	}, time.Second, 10*time.Millisecond, "user entry must be removed with its last connection")
}

func TestCloseAll(t *testing.T) {
	srv, svc := newServer(t)

	conn := dial(t, srv, token)
	readEvent(t, conn)

	svc.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %s", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "server shutting down", closeErr.Text)

	assert.Zero(t, svc.Stats().TotalConnections)
}
