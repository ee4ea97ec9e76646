// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devices

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
)

// Supported device types.
const (
	TypeLight         = "light"
	TypeThermostat    = "thermostat"
	TypeSecurityCam   = "security_camera"
	TypeSmartMeter    = "smart_meter"
	TypeDoorLock      = "door_lock"
	TypeSmokeDetector = "smoke_detector"
)

// Supported device statuses.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
	StatusOffline     = "offline"
)

var (
	deviceTypes = map[string]bool{
		TypeLight:         true,
		TypeThermostat:    true,
		TypeSecurityCam:   true,
		TypeSmartMeter:    true,
		TypeDoorLock:      true,
		TypeSmokeDetector: true,
	}

	deviceStatuses = map[string]bool{
		StatusActive:      true,
		StatusInactive:    true,
		StatusMaintenance: true,
		StatusOffline:     true,
	}
)

// ValidType reports whether the given device type is supported.
func ValidType(t string) bool {
	return deviceTypes[t]
}

// ValidStatus reports whether the given device status is supported.
func ValidStatus(s string) bool {
	return deviceStatuses[s]
}

// Device represents a managed device. Each device belongs to exactly one
// owner and is identified by a unique ID.
type Device struct {
	ID           string                 `json:"id" bson:"_id"`
	OwnerID      string                 `json:"owner_id" bson:"owner_id"`
	Name         string                 `json:"name" bson:"name"`
	Type         string                 `json:"type" bson:"type"`
	Status       string                 `json:"status" bson:"status"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	LastActiveAt *time.Time             `json:"last_active_at,omitempty" bson:"last_active_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" bson:"updated_at"`
}

// Validate returns an error if the device representation is invalid.
func (d Device) Validate() error {
	if d.Name == "" {
		return apiutil.ErrNameSize
	}
	if !ValidType(d.Type) {
		return apiutil.ErrInvalidDeviceType
	}
	if d.Status != "" && !ValidStatus(d.Status) {
		return apiutil.ErrInvalidDeviceStatus
	}
	return nil
}

// PageMetadata contains page metadata that helps navigation.
type PageMetadata struct {
	Total  uint64 `json:"total"`
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// DevicesPage contains a page of devices.
type DevicesPage struct {
	PageMetadata
	Devices []Device `json:"devices"`
}

// Stats holds per-owner device counts grouped by status. Every status
// bucket is present even when its count is zero.
type Stats struct {
	Total       uint64 `json:"total" bson:"total"`
	Active      uint64 `json:"active" bson:"active"`
	Inactive    uint64 `json:"inactive" bson:"inactive"`
	Offline     uint64 `json:"offline" bson:"offline"`
	Maintenance uint64 `json:"maintenance" bson:"maintenance"`
}

// TypeGroup holds the number of an owner's devices of a single type.
type TypeGroup struct {
	Type  string `json:"type" bson:"_id"`
	Count uint64 `json:"count" bson:"count"`
}

// Heartbeat is the result of recording a device heartbeat. PreviousStatus
// allows callers to detect a status transition.
type Heartbeat struct {
	Device         Device `json:"device"`
	PreviousStatus string `json:"previous_status"`
}

// DeviceRepository specifies a device persistence API.
type DeviceRepository interface {
	// Save persists the device.
	Save(ctx context.Context, device Device) (string, error)

	// Update updates the device identified by its ID, scoped to the owner.
	Update(ctx context.Context, device Device) error

	// RetrieveByID retrieves the device with the given ID owned by the
	// given owner.
	RetrieveByID(ctx context.Context, id, ownerID string) (Device, error)

	// RetrieveAny retrieves the device with the given ID regardless of
	// ownership. Used by background maintenance tasks.
	RetrieveAny(ctx context.Context, id string) (Device, error)

	// RetrieveByOwner retrieves a page of the owner's devices matching
	// the provided filters.
	RetrieveByOwner(ctx context.Context, ownerID string, pm PageMetadata) (DevicesPage, error)

	// Remove removes the device identified by its ID, scoped to the owner.
	Remove(ctx context.Context, id, ownerID string) error

	// RetrieveStats aggregates per-status device counts for the owner.
	RetrieveStats(ctx context.Context, ownerID string) (Stats, error)

	// RetrieveByType aggregates the owner's devices grouped by type,
	// ordered by descending count.
	RetrieveByType(ctx context.Context, ownerID string) ([]TypeGroup, error)

	// RetrieveInactive retrieves devices whose last activity predates the
	// threshold, including devices that were never active, and which are
	// not already marked inactive.
	RetrieveInactive(ctx context.Context, threshold time.Time) ([]Device, error)
}
