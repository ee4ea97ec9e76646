// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

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

const logsCollection = "device_logs"

var _ devices.LogRepository = (*logRepository)(nil)

type logRepository struct {
	db *mongo.Database
}

// NewLogRepository returns a MongoDB device log repository.
func NewLogRepository(db *mongo.Database) devices.LogRepository {
	return &logRepository{
		db: db,
	}
}

func (lr *logRepository) Save(ctx context.Context, log devices.Log) (string, error) {
	coll := lr.db.Collection(logsCollection)

	if _, err := coll.InsertOne(ctx, log); err != nil {
		return "", errors.Wrap(errors.ErrCreateEntity, err)
	}

	return log.ID, nil
}

func (lr *logRepository) RetrieveByDevice(ctx context.Context, deviceID string, pm devices.LogsPageMetadata) (devices.LogsPage, error) {
	coll := lr.db.Collection(logsCollection)

	filter := bson.M{"device_id": deviceID}
	if pm.Event != "" {
		filter["event"] = pm.Event
	}
	ts := bson.M{}
	if pm.From != nil {
		ts["$gte"] = *pm.From
	}
	if pm.To != nil {
		ts["$lte"] = *pm.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return devices.LogsPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if pm.Limit > 0 {
		opts.SetLimit(int64(pm.Limit))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return devices.LogsPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	logs := []devices.Log{}
	if err := cursor.All(ctx, &logs); err != nil {
		return devices.LogsPage{}, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	page := devices.LogsPage{
		LogsPageMetadata: pm,
		Logs:             logs,
	}
	page.Total = uint64(total)

	return page, nil
}

func (lr *logRepository) SummarizeUsage(ctx context.Context, deviceID string, from, to time.Time) (float64, uint64, error) {
	coll := lr.db.Collection(logsCollection)

	pipeline := []bson.M{
		{"$match": bson.M{
			"device_id": deviceID,
			"event":     devices.EventUnitsConsumed,
			"timestamp": bson.M{"$gte": from, "$lte": to},
		}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$value"},
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrRetrieveEntity, err)
	}
	defer cursor.Close(ctx)

	var res []struct {
		Total float64 `bson:"total"`
		Count uint64  `bson:"count"`
	}
	if err := cursor.All(ctx, &res); err != nil {
		return 0, 0, errors.Wrap(errors.ErrRetrieveEntity, err)
	}

	if len(res) == 0 {
		return 0, 0, nil
	}

	return res[0].Total, res[0].Count, nil
}
