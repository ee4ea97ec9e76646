// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package devicehub

import "os"

// Env reads specified environment variable. If no value has been found,
// fallback is returned.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
