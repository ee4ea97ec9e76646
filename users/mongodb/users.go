// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"

	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

var _ users.UserRepository = (*userRepository)(nil)

type userRepository struct {
	db *mongo.Database
}

// NewUserRepository returns a MongoDB user repository.
func NewUserRepository(db *mongo.Database) users.UserRepository {
	return &userRepository{
		db: db,
	}
}

func (ur *userRepository) Save(ctx context.Context, user users.User) (string, error) {
	coll := ur.db.Collection(usersCollection)

	if _, err := coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.Wrap(errors.ErrConflict, err)
		}
		return "", errors.Wrap(errors.ErrCreateEntity, err)
	}

	return user.ID, nil
}

func (ur *userRepository) Update(ctx context.Context, user users.User) error {
	coll := ur.db.Collection(usersCollection)

	update := bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"is_active":  user.IsActive,
		"updated_at": user.UpdatedAt,
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return errors.Wrap(errors.ErrUpdateEntity, err)
	}

	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (ur *userRepository) RetrieveByID(ctx context.Context, id string) (users.User, error) {
	coll := ur.db.Collection(usersCollection)

	var user users.User
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return users.User{}, errors.Wrap(errors.ErrNotFound, err)
		}
		return users.User{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return user, nil
}

func (ur *userRepository) RetrieveByEmail(ctx context.Context, email string) (users.User, error) {
	coll := ur.db.Collection(usersCollection)

	var user users.User
	if err := coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return users.User{}, errors.Wrap(errors.ErrNotFound, err)
		}
		return users.User{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return user, nil
}
