// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package api contains the users service HTTP transport and service
// decorators.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/apiutil"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/users"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-zoo/bone"
)

// MakeHandler registers the users API on the given mux.
func MakeHandler(mux *bone.Mux, svc users.Service, l logger.Logger) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(l, encodeError)),
	}

	mux.Post("/auth/register", kithttp.NewServer(
		registerEndpoint(svc),
		decodeRegister,
		encodeResponse,
		opts...,
	))

	mux.Post("/auth/login", kithttp.NewServer(
		loginEndpoint(svc),
		decodeLogin,
		encodeResponse,
		opts...,
	))

	mux.Get("/users/profile", kithttp.NewServer(
		viewProfileEndpoint(svc),
		decodeViewProfile,
		encodeResponse,
		opts...,
	))

	mux.Put("/users/profile", kithttp.NewServer(
		updateProfileEndpoint(svc),
		decodeUpdateProfile,
		encodeResponse,
		opts...,
	))

	return mux
}

func decodeRegister(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
}

func decodeLogin(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
}

func decodeViewProfile(_ context.Context, r *http.Request) (interface{}, error) {
	return viewProfileReq{token: apiutil.ExtractBearerToken(r)}, nil
}

func decodeUpdateProfile(_ context.Context, r *http.Request) (interface{}, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), apiutil.ContentTypeJSON) {
		return nil, apiutil.ErrUnsupportedContentType
	}

	req := updateProfileReq{token: apiutil.ExtractBearerToken(r)}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	return req, nil
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
		errors.Contains(err, users.ErrLoginFailed),
		errors.Contains(err, users.ErrUserDisabled),
		errors.Contains(err, apiutil.ErrBearerToken):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Contains(err, errors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Contains(err, errors.ErrConflict):
		w.WriteHeader(http.StatusConflict)
	case errors.Contains(err, apiutil.ErrUnsupportedContentType):
		w.WriteHeader(http.StatusUnsupportedMediaType)
	case errors.Contains(err, errors.ErrMalformedEntity),
		errors.Contains(err, apiutil.ErrMissingEmail),
		errors.Contains(err, apiutil.ErrEmailSize),
		errors.Contains(err, apiutil.ErrNameSize),
		errors.Contains(err, apiutil.ErrMissingPass):
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
