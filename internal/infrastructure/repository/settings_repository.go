package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-relay/internal/infrastructure/repository/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettingsRepository implements SettingsStore using MongoDB
type MongoSettingsRepository struct {
	collection *mongo.Collection
	prefix     string
}

// NewMongoSettingsRepository creates a new MongoDB settings repository.
// Keys are stored as "<prefix>_<key>".
func NewMongoSettingsRepository(db *mongo.Database, prefix string) *MongoSettingsRepository {
	return &MongoSettingsRepository{
		collection: db.Collection("options"),
		prefix:     prefix,
	}
}

// EnsureIndexes creates the unique key index
func (r *MongoSettingsRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create options index: %w", err)
	}
	return nil
}

// Get decodes the stored value for key into dst
func (r *MongoSettingsRepository) Get(ctx context.Context, key string, dst any) (bool, error) {
	var doc entity.MongoOptionDoc
	err := r.collection.FindOne(ctx, bson.M{"key": namespacedKey(r.prefix, key)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get option: %w", err)
	}

	if err := doc.DecodeValue(dst); err != nil {
		return false, fmt.Errorf("failed to decode option %s: %w", key, err)
	}
	return true, nil
}

// Set upserts the value for key
func (r *MongoSettingsRepository) Set(ctx context.Context, key string, value any) error {
	now := time.Now()
	filter := bson.M{"key": namespacedKey(r.prefix, key)}
	update := bson.M{
		"$set": bson.M{
			"value":     value,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}

// Delete removes key
func (r *MongoSettingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"key": namespacedKey(r.prefix, key)}); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}

func namespacedKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}
