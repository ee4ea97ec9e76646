// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package sweep runs the periodic inactive-device sweep. Devices that have
// not reported activity within the configured threshold are deactivated
// through the devices service, so the usual cache invalidation and client
// notification fire for every transition.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cron"
)

const (
	sweepEntryID = "inactive-device-sweep"
	sweepTimeout = time.Minute
)

// Sweeper periodically deactivates devices that went silent.
type Sweeper struct {
	svc       devices.Service
	schedules *cron.ScheduleManager
	threshold time.Duration
	logger    logger.Logger
}

// New returns a sweeper marking devices inactive once their last activity
// is older than the threshold.
func New(svc devices.Service, schedules *cron.ScheduleManager, threshold time.Duration, logger logger.Logger) *Sweeper {
	return &Sweeper{
		svc:       svc,
		schedules: schedules,
		threshold: threshold,
		logger:    logger,
	}
}

// Start registers the hourly sweep on the schedule manager.
func (s *Sweeper) Start() error {
	return s.schedules.ScheduleRepeatingTask(s.Run, 1, sweepEntryID)
}

// Stop removes the sweep from the schedule manager.
func (s *Sweeper) Stop() {
	s.schedules.RemoveEntry(sweepEntryID)
}

// Run executes a single sweep pass.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	devs, err := s.svc.ListInactiveDevices(ctx, s.threshold)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Inactive device sweep failed: %s", err))
		return
	}

	deactivated := 0
	for _, d := range devs {
		if _, err := s.svc.DeactivateDevice(ctx, d.ID); err != nil {
			s.logger.Warn(fmt.Sprintf("Failed to deactivate device %s: %s", d.ID, err))
			continue
		}
		deactivated++
	}

	if deactivated > 0 {
		s.logger.Info(fmt.Sprintf("Inactive device sweep deactivated %d devices.", deactivated))
	}
}
