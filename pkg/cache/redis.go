// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/go-redis/redis/v8"
)

var _ Store = (*redisStore)(nil)

type redisStore struct {
	counters
	client *redis.Client
	logger logger.Logger
}

// NewStore returns a Redis cache store implementation. A nil client puts
// the store in degraded mode: every read is a miss and every write a no-op,
// and the health probe reports the backend as disabled.
func NewStore(client *redis.Client, logger logger.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger,
	}
}

func (rs *redisStore) Get(ctx context.Context, key Key) ([]byte, bool) {
	if rs.client == nil {
		rs.miss()
		rs.logger.Warn(fmt.Sprintf("Cache backend not configured, get %s resolved to a miss", key))
		return nil, false
	}

	val, err := rs.client.Get(ctx, key.String()).Bytes()
	switch err {
	case nil:
		rs.hit()
		return val, true
	case redis.Nil:
		rs.miss()
		return nil, false
	default:
		rs.miss()
		rs.logger.Warn(fmt.Sprintf("Cache get %s failed: %s", key, err))
		return nil, false
	}
}

func (rs *redisStore) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) bool {
	if rs.client == nil {
		rs.logger.Warn(fmt.Sprintf("Cache backend not configured, set %s skipped", key))
		return false
	}

	if err := rs.client.Set(ctx, key.String(), value, ttl).Err(); err != nil {
		rs.logger.Warn(fmt.Sprintf("Cache set %s failed: %s", key, err))
		return false
	}

	rs.set()
	return true
}

func (rs *redisStore) Delete(ctx context.Context, key Key) bool {
	if rs.client == nil {
		rs.logger.Warn(fmt.Sprintf("Cache backend not configured, delete %s skipped", key))
		return false
	}

	if err := rs.client.Del(ctx, key.String()).Err(); err != nil {
		rs.logger.Warn(fmt.Sprintf("Cache delete %s failed: %s", key, err))
		return false
	}

	rs.delete(1)
	return true
}

func (rs *redisStore) DeletePattern(ctx context.Context, pattern string) bool {
	if rs.client == nil {
		rs.logger.Warn(fmt.Sprintf("Cache backend not configured, pattern delete %s skipped", pattern))
		return false
	}

	keys, err := rs.client.Keys(ctx, pattern).Result()
	if err != nil {
		rs.logger.Warn(fmt.Sprintf("Cache pattern delete %s failed: %s", pattern, err))
		return false
	}

	if len(keys) == 0 {
		return true
	}

	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		rs.logger.Warn(fmt.Sprintf("Cache pattern delete %s failed: %s", pattern, err))
		return false
	}

	rs.delete(uint64(len(keys)))
	return true
}

func (rs *redisStore) Health(ctx context.Context) Health {
	if rs.client == nil {
		return Health{Status: StatusDisabled}
	}

	start := time.Now()
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return Health{Status: StatusError, Error: err.Error()}
	}

	return Health{Status: StatusConnected, ResponseTime: time.Since(start)}
}

func (rs *redisStore) Stats() Stats {
	return rs.snapshot()
}

func (rs *redisStore) ResetStats() {
	rs.reset()
}
