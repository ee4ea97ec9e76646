// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package devicehub acts as an umbrella package containing multiple different
// building blocks of the device management backend.
package devicehub
