// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/pkg/jwt"
	"github.com/DeviceHubLabs/devicehub/pkg/uuid"
)

var (
	// ErrLoginFailed indicates that the supplied credentials are invalid.
	ErrLoginFailed = errors.New("invalid email or password")

	// ErrUserDisabled indicates an operation attempted on behalf of a
	// deactivated user account.
	ErrUserDisabled = errors.New("user account is disabled")
)

// Service specifies an API that must be fulfilled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// Register creates a new user account and returns its ID.
	Register(ctx context.Context, user User) (string, error)

	// Login authenticates the user and returns a bearer token.
	Login(ctx context.Context, user User) (string, error)

	// VerifyToken performs a synchronous, local token check and returns the
	// subject user ID. It never touches the store.
	VerifyToken(token string) (string, error)

	// Identify verifies the token and resolves the current user identity
	// against the store. Missing or deactivated accounts yield an error.
	Identify(ctx context.Context, token string) (User, error)

	// ViewProfile retrieves the profile of the user identified by the token.
	ViewProfile(ctx context.Context, token string) (User, error)

	// UpdateProfile updates name and email of the user identified by the token.
	UpdateProfile(ctx context.Context, token string, user User) error
}

var _ Service = (*usersService)(nil)

type usersService struct {
	users      UserRepository
	hasher     Hasher
	tokenizer  jwt.Tokenizer
	store      cache.Store
	idProvider uuid.IDProvider
	logger     logger.Logger
}

// New instantiates the users service implementation.
func New(users UserRepository, hasher Hasher, tokenizer jwt.Tokenizer, store cache.Store, idp uuid.IDProvider, logger logger.Logger) Service {
	return &usersService{
		users:      users,
		hasher:     hasher,
		tokenizer:  tokenizer,
		store:      store,
		idProvider: idp,
		logger:     logger,
	}
}

func (svc usersService) Register(ctx context.Context, user User) (string, error) {
	if _, err := svc.users.RetrieveByEmail(ctx, user.Email); err == nil {
		return "", errors.ErrConflict
	}

	uid, err := svc.idProvider.ID()
	if err != nil {
		return "", err
	}
	user.ID = uid

	hash, err := svc.hasher.Hash(user.Password)
	if err != nil {
		return "", errors.Wrap(errors.ErrMalformedEntity, err)
	}
	user.Password = hash

	if user.Role == "" {
		user.Role = RoleUser
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	return svc.users.Save(ctx, user)
}

func (svc usersService) Login(ctx context.Context, user User) (string, error) {
	dbUser, err := svc.users.RetrieveByEmail(ctx, user.Email)
	if err != nil {
		return "", errors.Wrap(ErrLoginFailed, err)
	}

	if err := svc.hasher.Compare(user.Password, dbUser.Password); err != nil {
		return "", errors.Wrap(ErrLoginFailed, err)
	}

	if !dbUser.IsActive {
		return "", ErrUserDisabled
	}

	return svc.tokenizer.Issue(dbUser.ID, time.Now())
}

func (svc usersService) VerifyToken(token string) (string, error) {
	return svc.tokenizer.Parse(token)
}

func (svc usersService) Identify(ctx context.Context, token string) (User, error) {
	id, err := svc.tokenizer.Parse(token)
	if err != nil {
		return User{}, errors.Wrap(errors.ErrAuthentication, err)
	}

	user, err := svc.users.RetrieveByID(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(errors.ErrAuthentication, err)
	}

	if !user.IsActive {
		return User{}, ErrUserDisabled
	}

	return user, nil
}

func (svc usersService) ViewProfile(ctx context.Context, token string) (User, error) {
	id, err := svc.tokenizer.Parse(token)
	if err != nil {
		return User{}, errors.Wrap(errors.ErrAuthentication, err)
	}

	key := cache.NewKey(cache.UserProfile, id)
	if val, ok := svc.store.Get(ctx, key); ok {
		var user User
		if err := json.Unmarshal(val, &user); err == nil {
			return user, nil
		}
	}

	user, err := svc.users.RetrieveByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if val, err := json.Marshal(user); err == nil {
		svc.store.Set(ctx, key, val, cache.UserProfile.TTL())
	}

	return user, nil
}

func (svc usersService) UpdateProfile(ctx context.Context, token string, user User) error {
	current, err := svc.Identify(ctx, token)
	if err != nil {
		return err
	}

	current.Name = user.Name
	if user.Email != "" {
		current.Email = user.Email
	}
	current.UpdatedAt = time.Now()

	if err := svc.users.Update(ctx, current); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		inv := cache.InvalidationFor(cache.MutationProfileUpdate, current.ID, "")
		if !cache.Invalidate(ctx, svc.store, inv) {
			svc.logger.Warn(fmt.Sprintf("Failed to invalidate profile cache for user %s", current.ID))
		}
	}()

	return nil
}
