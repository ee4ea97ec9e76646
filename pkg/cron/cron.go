// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package cron wraps the cron scheduler used for recurring background
// tasks such as the inactive-device sweep.
package cron

import (
	"fmt"
	"sync"

	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/robfig/cron/v3"
)

var errAddFunc = errors.New("failed to add cron function")

// ScheduleManager owns the cron runner and the entries registered on it.
type ScheduleManager struct {
	mu        sync.Mutex
	runner    *cron.Cron
	entryByID map[string]cron.EntryID
}

// NewScheduleManager returns a started schedule manager.
func NewScheduleManager() *ScheduleManager {
	runner := cron.New()
	runner.Start()

	return &ScheduleManager{
		runner:    runner,
		entryByID: make(map[string]cron.EntryID),
	}
}

// ScheduleRepeatingTask registers a task running every given number of
// hours, keyed by entity ID so it can be removed later.
func (sm *ScheduleManager) ScheduleRepeatingTask(task func(), everyHours int, entityID string) error {
	expr := fmt.Sprintf("0 */%d * * *", everyHours)

	entryID, err := sm.runner.AddFunc(expr, task)
	if err != nil {
		return errors.Wrap(errAddFunc, err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.entryByID[entityID] = entryID

	return nil
}

// RemoveEntry removes the scheduled task registered under the given ID.
func (sm *ScheduleManager) RemoveEntry(entityID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if entryID, ok := sm.entryByID[entityID]; ok {
		sm.runner.Remove(entryID)
		delete(sm.entryByID, entityID)
	}
}

// Stop stops the cron runner. Already running tasks complete.
func (sm *ScheduleManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.runner.Stop()
}
