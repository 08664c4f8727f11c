package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the service relies on. Index creation is
// idempotent in MongoDB, so this is safe to run on every startup (this is the
// schema-setup step of the deployment, analogous to running migrations).
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{
			collection: TrackedChannelsCollection,
			models: []mongo.IndexModel{
				// One tracked-channel set per tenant.
				{Keys: bson.D{{Key: "tenant_id", Value: 1}}, Options: options.Index().SetUnique(true)},
				{Keys: bson.D{{Key: "channels", Value: 1}}},
			},
		},
		{
			collection: ChatMessagesCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "timestamp", Value: -1}}},
				{Keys: bson.D{{Key: "username", Value: 1}}},
				{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			},
		},
		{
			collection: SessionsCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
	}

	for _, spec := range specs {
		if _, err := database.Collection(spec.collection).Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", spec.collection, err)
		}
	}
	return nil
}
