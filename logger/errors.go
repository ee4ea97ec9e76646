// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package logger

import "errors"

// ErrInvalidLogLevel indicates an unrecognized log level configuration value.
var ErrInvalidLogLevel = errors.New("unknown log level")
