// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devices

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
)

// Supported device log events.
const (
	EventUnitsConsumed  = "units_consumed"
	EventTempChanged    = "temperature_changed"
	EventMotionDetected = "motion_detected"
	EventDoorOpened     = "door_opened"
	EventDoorClosed     = "door_closed"
	EventLightOn        = "light_on"
	EventLightOff       = "light_off"
	EventSmokeDetected  = "smoke_detected"
)

var logEvents = map[string]bool{
	EventUnitsConsumed:  true,
	EventTempChanged:    true,
	EventMotionDetected: true,
	EventDoorOpened:     true,
	EventDoorClosed:     true,
	EventLightOn:        true,
	EventLightOff:       true,
	EventSmokeDetected:  true,
}

// ValidLogEvent reports whether the given log event is supported.
func ValidLogEvent(e string) bool {
	return logEvents[e]
}

// Usage ranges accepted by usage analytics queries.
const (
	RangeDay   = "24h"
	RangeWeek  = "7d"
	RangeMonth = "30d"
)

// RangeDuration maps a usage range name to its duration. The second return
// value reports whether the range is recognized.
func RangeDuration(rng string) (time.Duration, bool) {
	switch rng {
	case RangeDay:
		return 24 * time.Hour, true
	case RangeWeek:
		return 7 * 24 * time.Hour, true
	case RangeMonth:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// Log represents a single recorded device event.
type Log struct {
	ID        string                 `json:"id" bson:"_id"`
	DeviceID  string                 `json:"device_id" bson:"device_id"`
	Event     string                 `json:"event" bson:"event"`
	Value     interface{}            `json:"value,omitempty" bson:"value,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
}

// Validate returns an error if the log representation is invalid.
func (l Log) Validate() error {
	if l.DeviceID == "" {
		return apiutil.ErrMissingDeviceID
	}
	if !ValidLogEvent(l.Event) {
		return apiutil.ErrInvalidLogEvent
	}
	return nil
}

// LogsPageMetadata contains device log filtering criteria.
type LogsPageMetadata struct {
	Total uint64     `json:"total"`
	Limit uint64     `json:"limit"`
	Event string     `json:"event,omitempty"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// LogsPage contains a page of device logs, newest first.
type LogsPage struct {
	LogsPageMetadata
	Logs []Log `json:"logs"`
}

// UsageSummary aggregates units consumed by a single device over a range.
type UsageSummary struct {
	DeviceID   string    `json:"device_id"`
	Range      string    `json:"range"`
	TotalUnits float64   `json:"total_units"`
	Count      uint64    `json:"count"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
}

// LogRepository specifies a device log persistence API.
type LogRepository interface {
	// Save persists the log entry.
	Save(ctx context.Context, log Log) (string, error)

	// RetrieveByDevice retrieves logs of the given device matching the
	// provided filters, newest first.
	RetrieveByDevice(ctx context.Context, deviceID string, pm LogsPageMetadata) (LogsPage, error)

	// SummarizeUsage sums units consumed by the device between from and to.
	SummarizeUsage(ctx context.Context, deviceID string, from, to time.Time) (float64, uint64, error)
}
