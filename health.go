// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devicehub

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/json"
	svcStatus   = "pass"
	description = " service"
)

var (
	// Version represents the last service git tag in git history.
	// It's meant to be set using go build ldflags:
	// -ldflags "-X 'github.com/DeviceHubLabs/devicehub.Version=0.0.0'".
	Version = "0.0.0"
	// Commit represents the service git commit hash.
	Commit = "XXXXXXXXXXXX"
	// BuildTime contains the service build time.
	BuildTime = "1970-01-01_00:00:00"
)

// HealthInfo contains health check response info.
type HealthInfo struct {
	// Status contains service status.
	Status string `json:"status"`

	// Version contains current service version.
	Version string `json:"version"`

	// Commit represents the git hash commit.
	Commit string `json:"commit"`

	// Description contains service description.
	Description string `json:"description"`

	// BuildTime contains service build time.
	BuildTime string `json:"build_time"`
}

// Health exposes an HTTP handler for retrieving service health.
func Health(service string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		res := HealthInfo{
			Status:      svcStatus,
			Version:     Version,
			Commit:      Commit,
			Description: service + description,
			BuildTime:   BuildTime,
		}

		rw.Header().Set("Content-Type", contentType)
		if err := json.NewEncoder(rw).Encode(res); err != nil {
			rw.WriteHeader(http.StatusInternalServerError)
		}
	}
}
