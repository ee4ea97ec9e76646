// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/DeviceHubLabs/devicehub/ws"
	"github.com/go-zoo/bone"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod     = 30 * time.Second
	pongWait       = 60 * time.Second
	identifyWait   = 5 * time.Second
	closeWait      = 5 * time.Second
	maxMessageSize = 4096
)

// Authn verifies bearer tokens and resolves user identities.
type Authn interface {
	// VerifyToken performs a synchronous, local token check and returns
	// the subject user ID.
	VerifyToken(token string) (string, error)

	// Identify resolves the token against the user store.
	Identify(ctx context.Context, token string) (users.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MakeHandler registers the WebSocket endpoint on the given mux.
func MakeHandler(mux *bone.Mux, svc ws.Service, auth Authn, l logger.Logger) http.Handler {
	mux.GetFunc("/ws", handshake(svc, auth, l))
	return mux
}

// handshake admits a connection in two phases. The token signature is
// verified synchronously before the upgrade, so unauthenticated requests
// are rejected with a plain 401. The user lookup runs after the upgrade;
// until it confirms the account, the connection stays out of the registry
// and receives no frames. A missing or disabled account closes the socket
// with a policy violation.
func handshake(svc ws.Service, auth Authn, l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bone.GetQuery(r, "token")
		if len(token) == 0 {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := auth.VerifyToken(token[0])
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.Warn(fmt.Sprintf("Failed to upgrade connection for user %s: %s", userID, err))
			return
		}

		go admit(svc, auth, l, conn, userID, token[0])
	}
}

// admit resolves the connection's identity and registers it only on
// success. Registration sends the connected frame, so a connection that
// fails the lookup never appears in the registry and never receives an
// event.
func admit(svc ws.Service, auth Authn, l logger.Logger, conn *websocket.Conn, userID, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), identifyWait)
	defer cancel()

	user, err := auth.Identify(ctx, token)
	if err != nil {
		l.Warn(fmt.Sprintf("Closing connection of user %s: %s", userID, err))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user verification failed")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		conn.Close()
		return
	}

	client := ws.NewClient(conn, user)
	svc.Register(user.ID, client)

	done := make(chan struct{})
	go pingLoop(client, done)
	readLoop(svc, client, conn, done)
}

func pingLoop(client *ws.Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				return
			}
		}
	}
}

func readLoop(svc ws.Service, client *ws.Client, conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		svc.Unregister(client.UserID(), client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		client.Touch()
		svc.HandleMessage(client, payload)
	}
}
