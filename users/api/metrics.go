// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/go-kit/kit/metrics"
)

var _ users.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     users.Service
}

// MetricsMiddleware instruments the users service by tracking request count
// and latency.
func MetricsMiddleware(svc users.Service, counter metrics.Counter, latency metrics.Histogram) users.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Register(ctx context.Context, user users.User) (string, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "register").Add(1)
		mm.latency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Register(ctx, user)
}

func (mm *metricsMiddleware) Login(ctx context.Context, user users.User) (string, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "login").Add(1)
		mm.latency.With("method", "login").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Login(ctx, user)
}

func (mm *metricsMiddleware) VerifyToken(token string) (string, error) {
	return mm.svc.VerifyToken(token)
}

func (mm *metricsMiddleware) Identify(ctx context.Context, token string) (users.User, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "identify").Add(1)
		mm.latency.With("method", "identify").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Identify(ctx, token)
}

func (mm *metricsMiddleware) ViewProfile(ctx context.Context, token string) (users.User, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "view_profile").Add(1)
		mm.latency.With("method", "view_profile").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ViewProfile(ctx, token)
}

func (mm *metricsMiddleware) UpdateProfile(ctx context.Context, token string, user users.User) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "update_profile").Add(1)
		mm.latency.With("method", "update_profile").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpdateProfile(ctx, token, user)
}
