// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/DeviceHubLabs/devicehub/users"
	"github.com/go-kit/kit/endpoint"
)

func registerEndpoint(svc users.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(registerReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		user := users.User{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		}

		id, err := svc.Register(ctx, user)
		if err != nil {
			return nil, err
		}

		return registerRes{ID: id}, nil
	}
}

func loginEndpoint(svc users.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(loginReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		user := users.User{
			Email:    req.Email,
			Password: req.Password,
		}

		token, err := svc.Login(ctx, user)
		if err != nil {
			return nil, err
		}

		return tokenRes{Token: token}, nil
	}
}

func viewProfileEndpoint(svc users.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(viewProfileReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		user, err := svc.ViewProfile(ctx, req.token)
		if err != nil {
			return nil, err
		}

		return profileRes{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		}, nil
	}
}

func updateProfileEndpoint(svc users.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateProfileReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		user := users.User{
			Name:  req.Name,
			Email: req.Email,
		}

		if err := svc.UpdateProfile(ctx, req.token, user); err != nil {
			return nil, err
		}

		return updateRes{}, nil
	}
}
