package database

import (
	"context"
	"fmt"

	"devevent/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. The unique slug index
// is what actually guarantees slug uniqueness.
func EnsureIndexes(ctx context.Context, conn DatabaseProvider) error {
	db, err := conn.Connect(ctx)
	if err != nil {
		return err
	}

	indexes := map[string][]mongo.IndexModel{
		EventsCollection: {
			{Keys: bson.D{{Key: model.FieldSlug, Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: model.FieldTags, Value: 1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: model.FieldEventId, Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "login", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %v: %w", collection, err)
		}
	}
	return nil
}
