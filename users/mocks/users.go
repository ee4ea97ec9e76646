// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/users"
)

var _ users.UserRepository = (*userRepositoryMock)(nil)

type userRepositoryMock struct {
	mu    sync.Mutex
	users map[string]users.User
}

// NewUserRepository creates in-memory user repository.
func NewUserRepository(us ...users.User) users.UserRepository {
	repo := &userRepositoryMock{
		users: make(map[string]users.User),
	}
	for _, u := range us {
		repo.users[u.ID] = u
	}
	return repo
}

func (urm *userRepositoryMock) Save(_ context.Context, user users.User) (string, error) {
	urm.mu.Lock()
	defer urm.mu.Unlock()

	if _, ok := urm.users[user.ID]; ok {
		return "", errors.ErrConflict
	}

	urm.users[user.ID] = user
	return user.ID, nil
}

func (urm *userRepositoryMock) Update(_ context.Context, user users.User) error {
	urm.mu.Lock()
	defer urm.mu.Unlock()

	if _, ok := urm.users[user.ID]; !ok {
		return errors.ErrNotFound
	}

	urm.users[user.ID] = user
	return nil
}

func (urm *userRepositoryMock) RetrieveByID(_ context.Context, id string) (users.User, error) {
	urm.mu.Lock()
	defer urm.mu.Unlock()

	if u, ok := urm.users[id]; ok {
		return u, nil
	}

	return users.User{}, errors.ErrNotFound
}

func (urm *userRepositoryMock) RetrieveByEmail(_ context.Context, email string) (users.User, error) {
	urm.mu.Lock()
	defer urm.mu.Unlock()

	for _, u := range urm.users {
		if u.Email == email {
			return u, nil
		}
	}

	return users.User{}, errors.ErrNotFound
}
