// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package redis contains Redis client setup helpers.
package redis

import (
	"strconv"

	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/go-redis/redis/v8"
)

var errInvalidDB = errors.New("invalid redis db number")

// Connect creates a new Redis client instance based on the provided
// connection parameters. The connection itself is established lazily,
// on first use.
func Connect(url, pass, db string) (*redis.Client, error) {
	n, err := strconv.Atoi(db)
	if err != nil {
		return nil, errors.Wrap(errInvalidDB, err)
	}

	return redis.NewClient(&redis.Options{
		Addr:     url,
		Password: pass,
		DB:       n,
	}), nil
}
