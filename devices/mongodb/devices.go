// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package mongodb contains MongoDB repositories for devices and their logs.
package mongodb

import (
	"context"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const devicesCollection = "devices"

var _ devices.DeviceRepository = (*deviceRepository)(nil)

type deviceRepository struct {
	db *mongo.Database
}

// NewDeviceRepository returns a MongoDB device repository.
func NewDeviceRepository(db *mongo.Database) devices.DeviceRepository {
	return &deviceRepository{
		db: db,
	}
}

func (dr *deviceRepository) Save(ctx context.Context, device devices.Device) (string, error) {
	coll := dr.db.Collection(devicesCollection)

	if _, err := coll.InsertOne(ctx, device); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.Wrap(errors.ErrConflict, err)
		}
		return "", errors.Wrap(errors.ErrCreateEntity, err)
	}

	return device.ID, nil
}

func (dr *deviceRepository) Update(ctx context.Context, device devices.Device) error {
	coll := dr.db.Collection(devicesCollection)

	update := bson.M{"$set": bson.M{
		"name":           device.Name,
		"type":           device.Type,
		"status":         device.Status,
		"metadata":       device.Metadata,
		"last_active_at": device.LastActiveAt,
		"updated_at":     device.UpdatedAt,
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": device.ID}, update)
	if err != nil {
		return errors.Wrap(errors.ErrUpdateEntity, err)
	}

	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (dr *deviceRepository) RetrieveByID(ctx context.Context, id, ownerID string) (devices.Device, error) {
	coll := dr.db.Collection(devicesCollection)

	var device devices.Device
	filter := bson.M{"_id": id, "owner_id": ownerID}
	if err := coll.FindOne(ctx, filter).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return devices.Device{}, errors.Wrap(errors.ErrNotFound, err)
		}
		return devices.Device{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return device, nil
}

func (dr *deviceRepository) RetrieveAny(ctx context.Context, id string) (devices.Device, error) {
	coll := dr.db.Collection(devicesCollection)

	var device devices.Device
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return devices.Device{}, errors.Wrap(errors.ErrNotFound, err)
		}
		return devices.Device{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return device, nil
}

func (dr *deviceRepository) RetrieveByOwner(ctx context.Context, ownerID string, pm devices.PageMetadata) (devices.DevicesPage, error) {
	coll := dr.db.Collection(devicesCollection)

	filter := bson.M{"owner_id": ownerID}
	if pm.Type != "" {
		filter["type"] = pm.Type
	}
	if pm.Status != "" {
		filter["status"] = pm.Status
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return devices.DevicesPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(pm.Offset))
	if pm.Limit > 0 {
		opts.SetLimit(int64(pm.Limit))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return devices.DevicesPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	devs := []devices.Device{}
	if err := cursor.All(ctx, &devs); err != nil {
		return devices.DevicesPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	page := devices.DevicesPage{
		PageMetadata: pm,
		Devices:      devs,
	}
	page.Total = uint64(total)

	return page, nil
}

func (dr *deviceRepository) Remove(ctx context.Context, id, ownerID string) error {
	coll := dr.db.Collection(devicesCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return errors.Wrap(errors.ErrRemoveEntity, err)
	}

	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (dr *deviceRepository) RetrieveStats(ctx context.Context, ownerID string) (devices.Stats, error) {
	coll := dr.db.Collection(devicesCollection)

	pipeline := []bson.M{
		{"$match": bson.M{"owner_id": ownerID}},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return devices.Stats{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status string `bson:"_id"`
		Count  uint64 `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return devices.Stats{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	var stats devices.Stats
	for _, g := range groups {
		stats.Total += g.Count
		switch g.Status {
		case devices.StatusActive:
			stats.Active = g.Count
		case devices.StatusInactive:
			stats.Inactive = g.Count
		case devices.StatusOffline:
			stats.Offline = g.Count
		case devices.StatusMaintenance:
			stats.Maintenance = g.Count
		}
	}

	return stats, nil
}

func (dr *deviceRepository) RetrieveByType(ctx context.Context, ownerID string) ([]devices.TypeGroup, error) {
	coll := dr.db.Collection(devicesCollection)

	pipeline := []bson.M{
		{"$match": bson.M{"owner_id": ownerID}},
		{"$group": bson.M{
			"_id":   "$type",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	groups := []devices.TypeGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return groups, nil
}

func (dr *deviceRepository) RetrieveInactive(ctx context.Context, threshold time.Time) ([]devices.Device, error) {
	coll := dr.db.Collection(devicesCollection)

	// Devices that never reported activity count as inactive as well.
	filter := bson.M{
		"status": bson.M{"$ne": devices.StatusInactive},
		"$or": []bson.M{
			{"last_active_at": bson.M{"$lt": threshold}},
			{"last_active_at": nil},
		},
	}

	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	devs := []devices.Device{}
	if err := cursor.All(ctx, &devs); err != nil {
		return nil, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	return devs, nil
}
