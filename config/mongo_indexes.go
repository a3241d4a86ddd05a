package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryCollection holds the bot's activity log when Mongo is the memory backend.
const MemoryCollection = "bot_memory"

// memoryIndexes: TTL expiry on expires_at (a Date; 0 means expire at that
// instant), newest-first reads, and per-type scans.
var memoryIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0),
	},
	{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("by_timestamp"),
	},
	{
		Keys:    bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("by_type_ts"),
	},
}

func EnsureMongoIndexes(dbName string) error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	if dbName == "" {
		dbName = "agentclaw"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := MongoClient.Database(dbName).Collection(MemoryCollection).Indexes().CreateMany(ctx, memoryIndexes)
	return err
}
