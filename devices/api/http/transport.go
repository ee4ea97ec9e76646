// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package http contains the devices service HTTP transport.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	devicehub "github.com/DeviceHubLabs/devicehub"
	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/ws"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-zoo/bone"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MakeHandler registers the devices API, the service health endpoints and
// the Prometheus metrics endpoint on the given mux.
func MakeHandler(mux *bone.Mux, svc devices.Service, store cache.Store, sock ws.Service, l logger.Logger) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(l, encodeError)),
	}

	mux.Post("/devices", kithttp.NewServer(
		createDeviceEndpoint(svc),
		decodeCreateDevice,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices", kithttp.NewServer(
		listDevicesEndpoint(svc),
		decodeListDevices,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices/stats", kithttp.NewServer(
		statsEndpoint(svc),
		decodeOwnerRequest,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices/by-type", kithttp.NewServer(
		byTypeEndpoint(svc),
		decodeOwnerRequest,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices/:deviceId", kithttp.NewServer(
		viewDeviceEndpoint(svc),
		decodeViewDevice,
		encodeResponse,
		opts...,
	))

	mux.Put("/devices/:deviceId", kithttp.NewServer(
		updateDeviceEndpoint(svc),
		decodeUpdateDevice,
		encodeResponse,
		opts...,
	))

	mux.Delete("/devices/:deviceId", kithttp.NewServer(
		removeDeviceEndpoint(svc),
		decodeViewDevice,
		encodeResponse,
		opts...,
	))

	mux.Post("/devices/:deviceId/heartbeat", kithttp.NewServer(
		heartbeatEndpoint(svc),
		decodeHeartbeat,
		encodeResponse,
		opts...,
	))

	mux.Post("/devices/:deviceId/logs", kithttp.NewServer(
		createLogEndpoint(svc),
		decodeCreateLog,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices/:deviceId/logs", kithttp.NewServer(
		listLogsEndpoint(svc),
		decodeListLogs,
		encodeResponse,
		opts...,
	))

	mux.Get("/devices/:deviceId/usage", kithttp.NewServer(
		usageEndpoint(svc),
		decodeUsage,
		encodeResponse,
		opts...,
	))

	mux.GetFunc("/health", devicehub.Health("devicehub"))
	mux.GetFunc("/health/cache", cacheHealthHandler(store))
	mux.GetFunc("/health/ws", wsStatsHandler(sock))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeCreateDevice(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	req := createDeviceReq{token: apiutil.ExtractBearerToken(r)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
}

func decodeListDevices(_ context.Context, r *http.Request) (interface{}, error) {
	offset, err := apiutil.ReadUintQuery(r, "offset", apiutil.DefOffset)
	if err != nil {
		return nil, err
	}
	limit, err := apiutil.ReadUintQuery(r, "limit", apiutil.DefLimit)
	if err != nil {
		return nil, err
	}
	typ, err := apiutil.ReadStringQuery(r, "type", "")
	if err != nil {
		return nil, err
	}
	status, err := apiutil.ReadStringQuery(r, "status", "")
	if err != nil {
		return nil, err
	}

	req := listDevicesReq{
		token: apiutil.ExtractBearerToken(r),
		pm: devices.PageMetadata{
			Offset: offset,
			Limit:  limit,
			Type:   typ,
			Status: status,
		},
	}

	return req, nil
}

func decodeOwnerRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return ownerReq{token: apiutil.ExtractBearerToken(r)}, nil
}

func decodeViewDevice(_ context.Context, r *http.Request) (interface{}, error) {
	req := viewDeviceReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
	}

	return req, nil
}

func decodeUpdateDevice(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	req := updateDeviceReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
}

func decodeHeartbeat(_ context.Context, r *http.Request) (interface{}, error) {
	req := heartbeatReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errors.Wrap(errors.ErrMalformedEntity, err)
		}
	}

	return req, nil
}

func decodeCreateLog(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	req := createLogReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
}

func decodeListLogs(_ context.Context, r *http.Request) (interface{}, error) {
	limit, err := apiutil.ReadUintQuery(r, "limit", apiutil.DefLimit)
	if err != nil {
		return nil, err
	}
	event, err := apiutil.ReadStringQuery(r, "event", "")
	if err != nil {
		return nil, err
	}
	from, err := readTimeQuery(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := readTimeQuery(r, "to")
	if err != nil {
		return nil, err
	}

	req := listLogsReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
		pm: devices.LogsPageMetadata{
			Limit: limit,
			Event: event,
			From:  from,
			To:    to,
		},
	}

	return req, nil
}

func decodeUsage(_ context.Context, r *http.Request) (interface{}, error) {
	rng, err := apiutil.ReadStringQuery(r, "range", devices.RangeDay)
	if err != nil {
		return nil, err
	}

	req := usageReq{
		token: apiutil.ExtractBearerToken(r),
		id:    bone.GetValue(r, "deviceId"),
		rng:   rng,
	}

	return req, nil
}

func readTimeQuery(r *http.Request, key string) (*time.Time, error) {
	val, err := apiutil.ReadStringQuery(r, key, "")
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apiutil.ErrInvalidQueryParams
	}

	return &t, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(apiutil.Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", apiutil.ContentTypeJSON)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	switch {
	case errors.Contains(err, errors.ErrAuthentication),
		errors.Contains(err, apiutil.ErrBearerToken):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Contains(err, errors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Contains(err, errors.ErrConflict):
		w.WriteHeader(http.StatusConflict)
	case errors.Contains(err, apiutil.ErrUnsupportedContentType):
		w.WriteHeader(http.StatusUnsupportedMediaType)
	case errors.Contains(err, errors.ErrMalformedEntity),
		errors.Contains(err, apiutil.ErrMissingDeviceID),
		errors.Contains(err, apiutil.ErrNameSize),
		errors.Contains(err, apiutil.ErrInvalidDeviceType),
		errors.Contains(err, apiutil.ErrInvalidDeviceStatus),
		errors.Contains(err, apiutil.ErrInvalidLogEvent),
		errors.Contains(err, apiutil.ErrLimitSize),
		errors.Contains(err, apiutil.ErrOffsetSize),
		errors.Contains(err, apiutil.ErrInvalidQueryParams):
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if cerr, ok := err.(errors.Error); ok {
		w.Header().Set("Content-Type", apiutil.ContentTypeJSON)
		if encErr := json.NewEncoder(w).Encode(apiutil.ErrorRes{Err: cerr.Msg()}); encErr != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}

func cacheHealthHandler(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := struct {
			Health cache.Health `json:"health"`
			Stats  cache.Stats  `json:"stats"`
		}{
			Health: store.Health(r.Context()),
			Stats:  store.Stats(),
		}

		w.Header().Set("Content-Type", apiutil.ContentTypeJSON)
		json.NewEncoder(w).Encode(res)
	}
}

func wsStatsHandler(sock ws.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", apiutil.ContentTypeJSON)
		json.NewEncoder(w).Encode(sock.Stats())
	}
}
