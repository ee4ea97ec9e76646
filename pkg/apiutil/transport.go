// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package apiutil

import (
	"context"
	"net/http"
	"strconv"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-zoo/bone"
)

const (
	// ContentTypeJSON represents the JSON content type.
	ContentTypeJSON = "application/json"

	// DefOffset is the default offset for paginated listings.
	DefOffset = 0
	// DefLimit is the default limit for paginated listings.
	DefLimit = 10
)

// LoggingErrorEncoder is a go-kit error encoder logging decorator.
func LoggingErrorEncoder(logger logger.Logger, enc kithttp.ErrorEncoder) kithttp.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		switch {
		case errors.Contains(err, ErrBearerToken),
			errors.Contains(err, ErrMissingID),
			errors.Contains(err, ErrMissingDeviceID),
			errors.Contains(err, ErrNameSize),
			errors.Contains(err, ErrEmailSize),
			errors.Contains(err, ErrMissingEmail),
			errors.Contains(err, ErrMissingPass),
			errors.Contains(err, ErrInvalidDeviceType),
			errors.Contains(err, ErrInvalidDeviceStatus),
			errors.Contains(err, ErrInvalidLogEvent),
			errors.Contains(err, ErrLimitSize),
			errors.Contains(err, ErrOffsetSize),
			errors.Contains(err, ErrInvalidQueryParams),
			errors.Contains(err, ErrUnsupportedContentType),
			errors.Contains(err, ErrMalformedEntity):
			logger.Error(err.Error())
		}

		enc(ctx, err, w)
	}
}

// ReadUintQuery reads the value of uint http query parameters for a given key.
func ReadUintQuery(r *http.Request, key string, def uint64) (uint64, error) {
	vals := bone.GetQuery(r, key)
	if len(vals) > 1 {
		return 0, ErrInvalidQueryParams
	}

	if len(vals) == 0 {
		return def, nil
	}

	strval := vals[0]
	val, err := strconv.ParseUint(strval, 10, 64)
	if err != nil {
		return 0, ErrInvalidQueryParams
	}

	return val, nil
}

// ReadStringQuery reads the value of string http query parameters for a given key.
func ReadStringQuery(r *http.Request, key string, def string) (string, error) {
	vals := bone.GetQuery(r, key)
	if len(vals) > 1 {
		return "", ErrInvalidQueryParams
	}

	if len(vals) == 0 {
		return def, nil
	}

	return vals[0], nil
}
