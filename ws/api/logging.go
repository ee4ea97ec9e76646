// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	log "github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/ws"
)

var _ ws.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger log.Logger
	svc    ws.Service
}

// LoggingMiddleware adds logging facilities to the ws service.
func LoggingMiddleware(svc ws.Service, logger log.Logger) ws.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Register(userID string, client *ws.Client) {
	defer func(begin time.Time) {
		lm.logger.Info(fmt.Sprintf("Method register for user %s took %s to complete.", userID, time.Since(begin)))
	}(time.Now())

	lm.svc.Register(userID, client)
}

func (lm *loggingMiddleware) Unregister(userID string, client *ws.Client) {
	defer func(begin time.Time) {
		lm.logger.Info(fmt.Sprintf("Method unregister for user %s took %s to complete.", userID, time.Since(begin)))
	}(time.Now())

	lm.svc.Unregister(userID, client)
}

func (lm *loggingMiddleware) HandleMessage(client *ws.Client, payload []byte) {
	lm.svc.HandleMessage(client, payload)
}

func (lm *loggingMiddleware) BroadcastToUser(userID string, ev ws.Event) int {
	defer func(begin time.Time) {
		lm.logger.Debug(fmt.Sprintf("Method broadcast_to_user %s for user %s took %s to complete.", ev.Type, userID, time.Since(begin)))
	}(time.Now())

	return lm.svc.BroadcastToUser(userID, ev)
}

func (lm *loggingMiddleware) BroadcastToAll(ev ws.Event, excludeUserID string) {
	defer func(begin time.Time) {
		lm.logger.Debug(fmt.Sprintf("Method broadcast_to_all %s took %s to complete.", ev.Type, time.Since(begin)))
	}(time.Now())

	lm.svc.BroadcastToAll(ev, excludeUserID)
}

func (lm *loggingMiddleware) NotifyDeviceUpdate(userID, action string, device devices.Device, previousStatus string) {
	lm.svc.NotifyDeviceUpdate(userID, action, device, previousStatus)
}

func (lm *loggingMiddleware) NotifyDeviceHeartbeat(userID string, device devices.Device) {
	lm.svc.NotifyDeviceHeartbeat(userID, device)
}

func (lm *loggingMiddleware) NotifyAnalyticsUpdate(userID string, log devices.Log) {
	lm.svc.NotifyAnalyticsUpdate(userID, log)
}

func (lm *loggingMiddleware) Stats() ws.Stats {
	return lm.svc.Stats()
}

func (lm *loggingMiddleware) CloseAll() {
	defer func(begin time.Time) {
		lm.logger.Info(fmt.Sprintf("Method close_all took %s to complete.", time.Since(begin)))
	}(time.Now())

	lm.svc.CloseAll()
}
