package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongo connects to MongoDB and pings the primary before returning the database handle.
func NewMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Println("Connected to MongoDB")
	return client, client.Database(cfg.Database), nil
}

// EnsureMongoIndexes creates the indexes the repositories query on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"notifications": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "active", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"groups": {
			{Keys: bson.D{{Key: "instructorId", Value: 1}}},
		},
		"courses": {
			{Keys: bson.D{{Key: "instructorId", Value: 1}}},
			{Keys: bson.D{{Key: "instructorEmail", Value: 1}}},
		},
		"assessments": {
			{Keys: bson.D{{Key: "instructorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
